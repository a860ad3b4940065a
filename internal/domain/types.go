package domain

type Room struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Container struct {
	ID              int64  `json:"id"`
	Room            string `json:"room"`
	Name            string `json:"name"`
	HasSubContainer bool   `json:"hasSubContainer"`
}

type SubContainer struct {
	ID                int64  `json:"id"`
	Room              string `json:"room"`
	ContainerName     string `json:"containerName"`
	Name              string `json:"name"`
	HasThirdContainer bool   `json:"hasThirdContainer"`
}

type ThirdContainer struct {
	ID               int64  `json:"id"`
	Room             string `json:"room"`
	ContainerName    string `json:"containerName"`
	SubContainerName string `json:"subContainerName"`
	Name             string `json:"name"`
}

type Category struct {
	ID                 int64  `json:"id"`
	Name               string `json:"categoryName"`
	NeedProductionDate bool   `json:"needProductionDate"`
	NeedExpirationDate bool   `json:"needExpirationDate"`
	NeedReminder       bool   `json:"needReminder"`
	ReminderPeriodDays int    `json:"reminderPeriodDays"`
	NeedQuantity       bool   `json:"needQuantity"`
}

// Item dates and Timestamp are Unix milliseconds.
type Item struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Room           string   `json:"room"`
	Container      string   `json:"container"`
	SubContainer   *string  `json:"subContainer"`
	ThirdContainer *string  `json:"thirdContainer"`
	Category       string   `json:"category"`
	Description    string   `json:"description"`
	PhotoURIs      []string `json:"photoUris"`
	ProductionDate *int64   `json:"productionDate"`
	ReminderDays   *int     `json:"reminderDays"`
	Quantity       *int     `json:"quantity"`
	Timestamp      int64    `json:"timestamp"`
	ExpirationDate *int64   `json:"expirationDate"`
}

// MaxPhotos is the number of photos an item may carry. The first one is the
// thumbnail.
const MaxPhotos = 3

// Thumbnail returns the first photo reference, or "" when the item has none.
func (i *Item) Thumbnail() string {
	if len(i.PhotoURIs) == 0 {
		return ""
	}
	return i.PhotoURIs[0]
}
