package settings

import (
	"strings"

	"github.com/Justash01/inventory-saver/internal/snapshot"
	"github.com/Justash01/inventory-saver/internal/world"
)

// Retention dropdown options, in display order.
var RetentionOptions = []string{"World", "Memory (RAM)"}

// Form field labels.
const (
	FormTitle        = "Inventory Tools - Config Menu"
	LabelRetention   = "Save inventory structures in:"
	LabelRemoveItems = "Automatically remove items from inventory after save"
	LabelRemoveSaved = "Automatically remove inventory after load"
	LabelCarrier     = "Storage Entity ID:"
	CarrierHint      = "Only edit if you have a custom storage entity with at least 41 slots"
)

// Form is the configuration form's field values.
type Form struct {
	Retention   int  // index into RetentionOptions
	RemoveItems bool // "remove items after save"
	RemoveSaved bool // "remove inventory after load"
	CarrierType string
}

// Response is what the player submitted. Canceled responses change nothing.
type Response struct {
	Canceled bool
	Values   Form
}

// FormFromSettings prefills the form with the current settings.
func FormFromSettings(s Settings) Form {
	f := Form{
		RemoveItems: s.ClearAfterSave,
		RemoveSaved: s.ClearAfterLoad,
		CarrierType: s.CarrierType,
	}
	if s.Retention == snapshot.Transient {
		f.Retention = 1
	}
	if f.CarrierType == "" {
		f.CarrierType = world.DefaultCarrierType
	}
	return f
}

// Apply returns the settings a submitted form describes. ok is false for a
// canceled response. A blank carrier entry leaves CarrierType empty, which
// Store.Save records as "use the default".
func (r Response) Apply() (s Settings, ok bool) {
	if r.Canceled {
		return Settings{}, false
	}
	s = Defaults()
	if r.Values.Retention == 1 {
		s.Retention = snapshot.Transient
	}
	s.ClearAfterSave = r.Values.RemoveItems
	s.ClearAfterLoad = r.Values.RemoveSaved
	s.CarrierType = strings.TrimSpace(r.Values.CarrierType)
	return s, true
}
