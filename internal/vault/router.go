package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Justash01/inventory-saver/internal/settings"
)

// Command verbs, as sent by the host's script-event command.
const (
	VerbSave   = "inventory:save"
	VerbLoad   = "inventory:load"
	VerbDelete = "inventory:delete"
	VerbList   = "inventory:list"
	VerbConfig = "inventory:config"
)

// Tone colours a reply.
type Tone uint8

const (
	ToneNone Tone = iota // nothing to show
	ToneSuccess
	ToneFailure
	ToneInfo
)

// Reply is what the player sees after a command. Form is set when the
// command asks the caller to present the configuration form.
type Reply struct {
	Tone Tone
	Text string
	Form *settings.Form
}

// Router validates commands, loads settings once and dispatches to the Service.
type Router struct {
	svc      *Service
	settings *settings.Store
	logger   *slog.Logger
}

// NewRouter returns a Router.
func NewRouter(svc *Service, st *settings.Store, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{svc: svc, settings: st, logger: logger}
}

// NormalizeVerb maps "save" and "inventory:save" alike to VerbSave. Unknown
// verbs come back unchanged.
func NormalizeVerb(verb string) string {
	v := strings.ToLower(strings.TrimSpace(verb))
	if !strings.Contains(v, ":") {
		v = "inventory:" + v
	}
	switch v {
	case VerbSave, VerbLoad, VerbDelete, VerbList, VerbConfig:
		return v
	}
	return verb
}

// Dispatch runs one command for p. Unknown verbs produce a ToneNone reply.
func (r *Router) Dispatch(ctx context.Context, verb, raw string, p Player) Reply {
	verb = NormalizeVerb(verb)
	switch verb {
	case VerbSave, VerbLoad, VerbDelete, VerbList, VerbConfig:
	default:
		r.logger.Debug("ignoring unknown verb", "verb", verb, "player", p.ID)
		return Reply{}
	}

	var label string
	if verb == VerbSave || verb == VerbLoad || verb == VerbDelete {
		var err error
		if label, err = ParseLabel(raw); err != nil {
			return labelFailure(raw)
		}
	}

	cfg, err := r.settings.Load(ctx)
	if err != nil {
		r.logger.Error("load settings", "error", err)
		return failure("Could not read the inventory settings.")
	}

	switch verb {
	case VerbSave:
		if err := r.svc.Save(ctx, p, label, cfg); err != nil {
			return r.failed(err, p, label, "save")
		}
		return success(fmt.Sprintf("Inventory saved with ID '%s'.", label))

	case VerbLoad:
		if err := r.svc.Load(ctx, p, label, cfg); err != nil {
			return r.failed(err, p, label, "load")
		}
		return success(fmt.Sprintf("Inventory loaded from ID '%s'.", label))

	case VerbDelete:
		if err := r.svc.Delete(ctx, p, label); err != nil {
			if errors.Is(err, ErrNotFound) {
				return failure(fmt.Sprintf("No saved inventory found with ID '%s' to delete.", label))
			}
			return r.failed(err, p, label, "delete")
		}
		return success(fmt.Sprintf("Inventory with ID '%s' has been deleted.", label))

	case VerbList:
		entries, err := r.svc.List(ctx, p, cfg)
		if err != nil {
			return r.failed(err, p, "", "list")
		}
		if len(entries) == 0 {
			return failure("You don't have any saved inventories.")
		}
		return Reply{Tone: ToneSuccess, Text: FormatList(entries)}

	default: // VerbConfig
		form := settings.FormFromSettings(cfg)
		return Reply{Tone: ToneInfo, Form: &form}
	}
}

// ApplyConfig stores a submitted configuration form. Canceled forms are
// ignored and produce a ToneNone reply.
func (r *Router) ApplyConfig(ctx context.Context, resp settings.Response) Reply {
	next, ok := resp.Apply()
	if !ok {
		return Reply{}
	}
	if err := r.settings.Save(ctx, next); err != nil {
		r.logger.Error("save settings", "error", err)
		return failure("Could not save the inventory settings.")
	}
	r.logger.Info("settings updated",
		"retention", next.Retention.String(),
		"clear_after_save", next.ClearAfterSave,
		"clear_after_load", next.ClearAfterLoad,
		"carrier", next.CarrierType)
	return success("Inventory settings updated.")
}

// FormatList renders entries as "label: preview..." lines under a heading.
func FormatList(entries []Entry) string {
	var b strings.Builder
	b.WriteString("You have following saved inventories:")
	for _, e := range entries {
		fmt.Fprintf(&b, "\n%s: %s...", e.Label, e.Preview)
	}
	return b.String()
}

func (r *Router) failed(err error, p Player, label, op string) Reply {
	switch {
	case errors.Is(err, ErrDuplicateLabel):
		return failure(fmt.Sprintf("A saved inventory with ID '%s' already exists.", label))
	case errors.Is(err, ErrNotFound):
		return failure(fmt.Sprintf("No saved inventory found with ID '%s'.", label))
	case errors.Is(err, ErrEmptySource):
		return failure("Your inventory is empty, there's nothing to save!")
	case errors.Is(err, ErrCarrierUnavailable):
		r.logger.Warn("carrier unavailable", "op", op, "player", p.ID, "label", label, "error", err)
		return failure("The storage entity could not be reached. Nothing was changed.")
	case errors.Is(err, ErrCarrierTooSmall):
		r.logger.Warn("carrier too small", "player", p.ID, "label", label, "error", err)
		return failure("The storage entity is too small for your inventory. Nothing was changed.")
	case errors.Is(err, ErrNoRoom):
		r.logger.Warn("no room to load", "player", p.ID, "label", label, "error", err)
		return failure(fmt.Sprintf("Your inventory has no room for everything saved in '%s'. Nothing was changed.", label))
	}
	r.logger.Error("inventory command failed", "op", op, "player", p.ID, "label", label, "error", err)
	return failure("Something went wrong, please try again.")
}

func labelFailure(raw string) Reply {
	if strings.Trim(raw, `"`) == "" {
		return failure("Invalid inventory ID: an ID is required.")
	}
	return failure("Invalid inventory ID: Spaces are not allowed.")
}

func success(text string) Reply { return Reply{Tone: ToneSuccess, Text: text} }

func failure(text string) Reply { return Reply{Tone: ToneFailure, Text: text} }
