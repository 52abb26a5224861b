package amplitude

import (
	"time"

	"github.com/google/uuid"
)

// EventDecoratorFunc sets a single attribute on an event under construction.
type EventDecoratorFunc func(e *Event)

// NewEvent creates an event of the given type and applies any decorators to
// it. The result is not validated here. Events headed for the ingestion
// endpoints need at least one of User and Device to be accepted.
func NewEvent(eventType string, decorators ...EventDecoratorFunc) Event {
	e := Event{EventType: eventType}

	for _, decorator := range decorators {
		decorator(&e)
	}

	return e
}

func User(userID string) EventDecoratorFunc {
	return func(e *Event) { e.UserID = userID }
}

func Device(deviceID string) EventDecoratorFunc {
	return func(e *Event) { e.DeviceID = deviceID }
}

// At timestamps the event in milliseconds since the Unix epoch, which is the
// resolution the ingestion endpoints expect.
func At(t time.Time) EventDecoratorFunc {
	return func(e *Event) { e.Time = t.UnixMilli() }
}

func Property(name string, value any) EventDecoratorFunc {
	return func(e *Event) {
		if e.EventProperties == nil {
			e.EventProperties = map[string]any{}
		}
		e.EventProperties[name] = value
	}
}

func UserProperty(name string, value any) EventDecoratorFunc {
	return func(e *Event) {
		if e.UserProperties == nil {
			e.UserProperties = map[string]any{}
		}
		e.UserProperties[name] = value
	}
}

func Group(name string, value any) EventDecoratorFunc {
	return func(e *Event) {
		if e.Groups == nil {
			e.Groups = map[string]any{}
		}
		e.Groups[name] = value
	}
}

func Platform(platform string) EventDecoratorFunc {
	return func(e *Event) { e.Platform = platform }
}

func OSName(name string) EventDecoratorFunc {
	return func(e *Event) { e.OSName = name }
}

func City(name string) EventDecoratorFunc {
	return func(e *Event) { e.City = name }
}

func Country(code string) EventDecoratorFunc {
	return func(e *Event) { e.Country = code }
}

func AppVersion(version string) EventDecoratorFunc {
	return func(e *Event) { e.AppVersion = version }
}

func Language(language string) EventDecoratorFunc {
	return func(e *Event) { e.Language = language }
}

func Session(sessionID int64) EventDecoratorFunc {
	return func(e *Event) { e.SessionID = sessionID }
}

// Revenue attaches purchase amounts to the event. The revenue field is
// derived as price times quantity, matching how the ingestion endpoints
// compute it when it is left unset.
func Revenue(productID string, quantity int, price float64) EventDecoratorFunc {
	return func(e *Event) {
		e.ProductID = productID
		e.Quantity = quantity
		e.Price = price
		e.Revenue = price * float64(quantity)
	}
}

// TotalRevenue sets the revenue amount directly, for events that report an
// order total instead of a single priced product.
func TotalRevenue(amount float64) EventDecoratorFunc {
	return func(e *Event) { e.Revenue = amount }
}

func InsertID(insertID string) EventDecoratorFunc {
	return func(e *Event) { e.InsertID = insertID }
}

// UniqueInsertID gives the event a random insert id so that retried uploads
// deduplicate server side instead of double counting.
func UniqueInsertID() EventDecoratorFunc {
	return InsertID(uuid.NewString())
}
