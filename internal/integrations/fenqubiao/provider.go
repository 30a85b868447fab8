package fenqubiao

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"paper-system/internal/entities"
	"paper-system/internal/integrations"
	apperrors "paper-system/pkg/errors"
)

const (
	searchEndpoint = "/api/v2/user/search"
	detailEndpoint = "/api/v2/user/detail"
)

// Provider - клиент внешнего каталога разделов журналов.
type Provider struct {
	httpClient *http.Client
	baseURL    string
	username   string
	password   string
	logger     *zap.Logger
}

func New(baseURL, username, password string, timeout time.Duration, logger *zap.Logger) *Provider {
	return &Provider{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		username:   username,
		password:   password,
		logger:     logger.Named("fenqubiao_provider"),
	}
}

func (p *Provider) Name() string {
	return "fenqubiao"
}

func (p *Provider) Search(ctx context.Context, q integrations.JournalQuery) (*integrations.JournalPage, error) {
	params := url.Values{}
	params.Set("year", q.Year)
	params.Set("keyword", q.Keyword)
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("size", strconv.Itoa(q.PageSize))

	var resp searchResponse
	if err := p.fetchJSON(ctx, searchEndpoint, params, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("каталог журналов вернул неуспешный ответ")
	}

	journals := make([]entities.Journal, 0, len(resp.Data))
	for _, ext := range resp.Data {
		j, err := mapJournalToInternal(ext)
		if err != nil {
			p.logger.Warn("Ошибка конвертации записи каталога, запись пропущена", zap.Error(err))
			continue
		}
		journals = append(journals, j)
	}
	p.logger.Debug("Успешно получено и распарсено", zap.String("keyword", q.Keyword), zap.Int("count", len(journals)))

	total := resp.Total
	if total == 0 {
		total = uint64(len(journals))
	}
	return &integrations.JournalPage{Journals: journals, Total: total}, nil
}

func (p *Provider) Detail(ctx context.Context, journalID, year string) (*entities.Journal, error) {
	params := url.Values{}
	params.Set("id", journalID)
	params.Set("year", year)

	var resp detailResponse
	if err := p.fetchJSON(ctx, detailEndpoint, params, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Data == nil {
		return nil, apperrors.ErrNotFound
	}
	j, err := mapJournalToInternal(*resp.Data)
	if err != nil {
		return nil, apperrors.ErrNotFound
	}
	return &j, nil
}
