package appstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vividhyeok/loopcaster/internal/model"
)

func TestNewSeedsSettings(t *testing.T) {
	s := New(model.Settings{Search: "jazz"})
	assert.Equal(t, "jazz", s.Settings().Search)
}

func TestQuitSetsIsQuitting(t *testing.T) {
	s := New(model.Settings{})
	assert.False(t, s.IsQuitting())

	s.Quit()

	assert.True(t, s.IsQuitting())
}

func TestUpdateSettingsMutatesUnderLock(t *testing.T) {
	s := New(model.Settings{Bars: 4})

	s.UpdateSettings(func(settings *model.Settings) { settings.Bars = 8 })

	assert.Equal(t, 8, s.Settings().Bars)
}
