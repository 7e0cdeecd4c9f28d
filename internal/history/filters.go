package history

import (
	"errors"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/arbor-cms/arbor/internal/users"
)

const dateLayout = "2006-01-02"

// FilterSet narrows a history query from request parameters. Fields that
// failed validation are reported by Errors and left out of Filter.
type FilterSet interface {
	Filter(q Query) Query
	Errors() map[string]string
}

// HistoryFilterValues holds the raw submitted filter values.
type HistoryFilterValues struct {
	Action          []string `form:"action" validate:"dive,history_action"`
	User            string   `form:"user" validate:"omitempty,numeric"`
	TimestampAfter  string   `form:"timestamp_after" validate:"omitempty,datetime=2006-01-02"`
	TimestampBefore string   `form:"timestamp_before" validate:"omitempty,datetime=2006-01-02"`
}

// HistoryFilterSet filters log entries by action, user and date range.
type HistoryFilterSet struct {
	Values        HistoryFilterValues
	ActionChoices []ActionGroup
	UserChoices   []users.Choice
	errors        map[string]string
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("history_action", func(fl validator.FieldLevel) bool {
		return IsRegisteredAction(fl.Field().String())
	})
	return v
}

// NewHistoryFilterSet binds and validates values. userChoices restricts the
// user filter to the listed users; nil accepts any id.
func NewHistoryFilterSet(values url.Values, userChoices []users.Choice) *HistoryFilterSet {
	fs := &HistoryFilterSet{
		Values: HistoryFilterValues{
			Action:          nonEmpty(values["action"]),
			User:            strings.TrimSpace(values.Get("user")),
			TimestampAfter:  strings.TrimSpace(values.Get("timestamp_after")),
			TimestampBefore: strings.TrimSpace(values.Get("timestamp_before")),
		},
		ActionChoices: GroupedActionChoices(),
		UserChoices:   userChoices,
		errors:        make(map[string]string),
	}
	fs.validate()
	return fs
}

func (fs *HistoryFilterSet) validate() {
	err := validate.Struct(fs.Values)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			field := fe.Field()
			if idx := strings.IndexByte(field, '['); idx >= 0 {
				field = field[:idx]
			}
			if _, seen := fs.errors[field]; seen {
				continue
			}
			fs.errors[field] = messageFor(fe.Tag())
		}
	}
	if _, bad := fs.errors["user"]; !bad && fs.Values.User != "" && fs.UserChoices != nil {
		id, _ := strconv.ParseInt(fs.Values.User, 10, 64)
		if !hasUserChoice(fs.UserChoices, id) {
			fs.errors["user"] = messageFor("choice")
		}
	}
}

func messageFor(tag string) string {
	switch tag {
	case "datetime":
		return "Enter a valid date."
	default:
		return "Select a valid choice."
	}
}

func hasUserChoice(choices []users.Choice, id int64) bool {
	for _, c := range choices {
		if c.ID == id {
			return true
		}
	}
	return false
}

// Errors returns validation messages keyed by parameter name.
func (fs *HistoryFilterSet) Errors() map[string]string {
	return fs.errors
}

// Valid reports whether every submitted field validated.
func (fs *HistoryFilterSet) Valid() bool {
	return len(fs.errors) == 0
}

// Active reports whether any filter is applied.
func (fs *HistoryFilterSet) Active() bool {
	v := fs.Values
	return len(v.Action) > 0 || v.User != "" || v.TimestampAfter != "" || v.TimestampBefore != ""
}

// ActionSelected reports whether action is among the submitted actions.
func (fs *HistoryFilterSet) ActionSelected(action string) bool {
	for _, a := range fs.Values.Action {
		if a == action {
			return true
		}
	}
	return false
}

// Filter applies every valid submitted field to q.
func (fs *HistoryFilterSet) Filter(q Query) Query {
	if _, bad := fs.errors["action"]; !bad && len(fs.Values.Action) > 0 {
		q.Actions = append([]string(nil), fs.Values.Action...)
	}
	if _, bad := fs.errors["user"]; !bad && fs.Values.User != "" {
		if id, err := strconv.ParseInt(fs.Values.User, 10, 64); err == nil {
			q.UserID = &id
		}
	}
	if _, bad := fs.errors["timestamp_after"]; !bad && fs.Values.TimestampAfter != "" {
		if t, err := time.Parse(dateLayout, fs.Values.TimestampAfter); err == nil {
			q.After = t
		}
	}
	// The upper bound includes the whole named day.
	if _, bad := fs.errors["timestamp_before"]; !bad && fs.Values.TimestampBefore != "" {
		if t, err := time.Parse(dateLayout, fs.Values.TimestampBefore); err == nil {
			q.Before = t.AddDate(0, 0, 1)
		}
	}
	return q
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
