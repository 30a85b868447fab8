package repositories

import (
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaperUpdateSetMap(t *testing.T) {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	set, err := PaperUpdate{DOI: null.StringFrom(""), PublishDate: null.TimeFrom(date)}.setMap()
	require.NoError(t, err)
	assert.Equal(t, date, set["publish_date"])
	assert.Contains(t, set, "doi")
	assert.Nil(t, set["doi"])
	assert.NotContains(t, set, "title")

	set, err = PaperUpdate{ClearPublishDate: true}.setMap()
	require.NoError(t, err)
	assert.Contains(t, set, "publish_date")
	assert.Nil(t, set["publish_date"])

	set, err = PaperUpdate{}.setMap()
	require.NoError(t, err)
	assert.Empty(t, set)
}
