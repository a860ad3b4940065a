package domain

// ApplyCategoryChange recomputes the optional fields of an item tagged with
// old after the category is rewritten to updated. A capability that goes from
// required to not required clears the matching field. Turning the reminder on
// defaults the item's reminder to the category period.
func ApplyCategoryChange(item Item, old, updated Category) Item {
	item.Category = updated.Name

	if old.NeedExpirationDate && !updated.NeedExpirationDate {
		item.ExpirationDate = nil
	}
	if old.NeedProductionDate && !updated.NeedProductionDate {
		item.ProductionDate = nil
	}
	if old.NeedQuantity && !updated.NeedQuantity {
		item.Quantity = nil
	}
	switch {
	case old.NeedReminder && !updated.NeedReminder:
		item.ReminderDays = nil
	case !old.NeedReminder && updated.NeedReminder:
		days := updated.ReminderPeriodDays
		item.ReminderDays = &days
	}
	return item
}
