package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionLabel(t *testing.T) {
	assert.Equal(t, "Publish", ActionLabel(ActionPublish))
	assert.Equal(t, "Add comment", ActionLabel("wagtail.comments.create"))
	assert.Equal(t, "Custom Thing", ActionLabel("myapp.custom_thing"))
}

func TestFlattenChoicesKeepsOrder(t *testing.T) {
	groups := []ActionGroup{
		{Label: "A", Choices: []ActionChoice{{Value: "a.one"}, {Value: "a.two"}}},
		{Label: "B", Choices: []ActionChoice{{Value: "b.one"}}},
	}
	flat := FlattenChoices(groups)
	assert.Equal(t, []ActionChoice{{Value: "a.one"}, {Value: "a.two"}, {Value: "b.one"}}, flat)
}

func TestRegisterActionRelabels(t *testing.T) {
	RegisterAction("Custom", "arbor.test.action", "First")
	RegisterAction("Custom", "arbor.test.action", "Second")

	assert.True(t, IsRegisteredAction("arbor.test.action"))
	assert.Equal(t, "Second", ActionLabel("arbor.test.action"))

	count := 0
	for _, c := range FlattenChoices(GroupedActionChoices()) {
		if c.Value == "arbor.test.action" {
			count++
			assert.Equal(t, "Second", c.Label)
		}
	}
	assert.Equal(t, 1, count)
}
