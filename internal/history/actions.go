package history

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CommentActionPrefix is shared by every commenting action.
const CommentActionPrefix = "wagtail.comments"

// Action identifiers recorded by the application itself.
const (
	ActionPublish         = "wagtail.publish"
	ActionPublishSchedule = "wagtail.publish.scheduled"
	ActionScheduleCancel  = "wagtail.schedule.cancel"
)

// ActionChoice is a selectable action in the filter form.
type ActionChoice struct {
	Value string
	Label string
}

// ActionGroup is a labelled group of choices.
type ActionGroup struct {
	Label   string
	Choices []ActionChoice
}

type actionRegistry struct {
	mu     sync.RWMutex
	labels map[string]string
	groups []ActionGroup
}

var actions = newActionRegistry()

func newActionRegistry() *actionRegistry {
	r := &actionRegistry{labels: make(map[string]string)}
	for _, def := range []struct{ group, action, label string }{
		{"Pages", "wagtail.create", "Create"},
		{"Pages", "wagtail.edit", "Save draft"},
		{"Pages", "wagtail.delete", "Delete"},
		{"Pages", ActionPublish, "Publish"},
		{"Pages", ActionPublishSchedule, "Publish scheduled draft"},
		{"Pages", "wagtail.schedule.revision", "Schedule revision"},
		{"Pages", ActionScheduleCancel, "Unschedule publication"},
		{"Pages", "wagtail.unpublish", "Unpublish"},
		{"Pages", "wagtail.unpublish.scheduled", "Unpublish scheduled draft"},
		{"Pages", "wagtail.lock", "Lock"},
		{"Pages", "wagtail.unlock", "Unlock"},
		{"Pages", "wagtail.copy", "Copy"},
		{"Pages", "wagtail.move", "Move"},
		{"Pages", "wagtail.reorder", "Reorder"},
		{"Pages", "wagtail.rename", "Rename"},
		{"Pages", "wagtail.revert", "Revert"},
		{"Privacy", "wagtail.view_restriction.create", "Add view restrictions"},
		{"Privacy", "wagtail.view_restriction.edit", "Update view restrictions"},
		{"Privacy", "wagtail.view_restriction.delete", "Remove view restrictions"},
		{"Workflow", "wagtail.workflow.start", "Workflow: start"},
		{"Workflow", "wagtail.workflow.approve", "Workflow: approve task"},
		{"Workflow", "wagtail.workflow.reject", "Workflow: reject task"},
		{"Workflow", "wagtail.workflow.resume", "Workflow: resume task"},
		{"Workflow", "wagtail.workflow.cancel", "Workflow: cancel"},
		{"Comments", CommentActionPrefix + ".create", "Add comment"},
		{"Comments", CommentActionPrefix + ".edit", "Edit comment"},
		{"Comments", CommentActionPrefix + ".delete", "Delete comment"},
		{"Comments", CommentActionPrefix + ".resolve", "Resolve comment"},
		{"Comments", CommentActionPrefix + ".create_reply", "Reply to comment"},
		{"Comments", CommentActionPrefix + ".edit_reply", "Edit reply to comment"},
		{"Comments", CommentActionPrefix + ".delete_reply", "Delete reply to comment"},
	} {
		r.register(def.group, def.action, def.label)
	}
	return r
}

func (r *actionRegistry) register(group, action, label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.labels[action]; exists {
		r.labels[action] = label
		for gi := range r.groups {
			for ci := range r.groups[gi].Choices {
				if r.groups[gi].Choices[ci].Value == action {
					r.groups[gi].Choices[ci].Label = label
				}
			}
		}
		return
	}
	r.labels[action] = label
	for gi := range r.groups {
		if r.groups[gi].Label == group {
			r.groups[gi].Choices = append(r.groups[gi].Choices, ActionChoice{Value: action, Label: label})
			return
		}
	}
	r.groups = append(r.groups, ActionGroup{Label: group, Choices: []ActionChoice{{Value: action, Label: label}}})
}

// RegisterAction adds or relabels a log action under group.
func RegisterAction(group, action, label string) {
	action = strings.TrimSpace(action)
	if action == "" {
		return
	}
	actions.register(group, action, label)
}

// IsRegisteredAction reports whether action is known to the registry.
func IsRegisteredAction(action string) bool {
	actions.mu.RLock()
	defer actions.mu.RUnlock()
	_, ok := actions.labels[action]
	return ok
}

// GroupedActionChoices returns the filter choices in registration order.
func GroupedActionChoices() []ActionGroup {
	actions.mu.RLock()
	defer actions.mu.RUnlock()
	groups := make([]ActionGroup, len(actions.groups))
	for i, g := range actions.groups {
		groups[i] = ActionGroup{Label: g.Label, Choices: append([]ActionChoice(nil), g.Choices...)}
	}
	return groups
}

// FlattenChoices drops the grouping so choices can be looked up by value.
func FlattenChoices(groups []ActionGroup) []ActionChoice {
	var flat []ActionChoice
	for _, g := range groups {
		flat = append(flat, g.Choices...)
	}
	return flat
}

// ActionLabel returns the human label of action. Unknown actions are
// labelled from their last dotted segment.
func ActionLabel(action string) string {
	actions.mu.RLock()
	label, ok := actions.labels[action]
	actions.mu.RUnlock()
	if ok {
		return label
	}
	last := action
	if idx := strings.LastIndexByte(action, '.'); idx >= 0 {
		last = action[idx+1:]
	}
	last = strings.ReplaceAll(last, "_", " ")
	return cases.Title(language.English).String(last)
}
