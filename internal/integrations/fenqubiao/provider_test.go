package fenqubiao

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"paper-system/internal/integrations"
	apperrors "paper-system/pkg/errors"
)

func TestSearchMapsAlternateFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, searchEndpoint, r.URL.Path)
		assert.Equal(t, "bot", r.URL.Query().Get("user"))
		assert.Equal(t, "physics", r.URL.Query().Get("keyword"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"total":7,"data":[
			{"id":101,"name":"Physical Review","2023":"JCR Q2","if_2022":"3.5","categories":"Physics"},
			{"journal_id":"x","journal_name":"Annals","partition_2023":null},
			{"name":"без идентификатора"}
		]}`))
	}))
	defer srv.Close()

	p := New(srv.URL, "bot", "secret", time.Second, zap.NewNop())
	page, err := p.Search(context.Background(), integrations.JournalQuery{Keyword: "physics", Year: "2023", Page: 1, PageSize: 20})
	require.NoError(t, err)

	assert.Equal(t, uint64(7), page.Total)
	require.Len(t, page.Journals, 2)
	first := page.Journals[0]
	assert.Equal(t, "101", first.JournalID)
	assert.Equal(t, "JCR Q2", first.PartitionInfo)
	assert.Equal(t, 2, first.PartitionLevel)
	assert.Equal(t, "Physics", first.SubjectCategories)
	require.NotNil(t, first.ImpactFactor)
	assert.InDelta(t, 3.5, *first.ImpactFactor, 0.0001)
	assert.Equal(t, 5, page.Journals[1].PartitionLevel)
}

func TestSearchFailsOnBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := New(srv.URL, "", "", time.Second, zap.NewNop())
	_, err := p.Search(context.Background(), integrations.JournalQuery{Keyword: "ab"})
	assert.Error(t, err)
}

func TestDetailNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false}`))
	}))
	defer srv.Close()

	p := New(srv.URL, "", "", time.Second, zap.NewNop())
	_, err := p.Detail(context.Background(), "42", "2023")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
