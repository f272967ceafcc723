package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/chxlky/trello-report/internal/config"
	"github.com/chxlky/trello-report/internal/models"
	"go.uber.org/zap"
)

// ResourceKind names the Trello resources the report needs.
type ResourceKind string

const (
	KindBoard            ResourceKind = "board"
	KindLists            ResourceKind = "lists"
	KindCards            ResourceKind = "cards"
	KindCustomFieldItems ResourceKind = "customFieldItems"
)

// ErrGaveUp means the request stayed rate limited for every attempt. Callers
// treat it as "no data available".
var ErrGaveUp = errors.New("trello API rate limit exceeded on every attempt")

var errRateLimited = errors.New("trello API rate limit exceeded")

// APIError carries the raw response of an unexpected, non-retried status.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("trello API returned non-200 status: %s, body: %s", e.Status, e.Body)
}

type FetchStatus int

const (
	FetchSuccess FetchStatus = iota
	FetchGaveUp
)

// FetchResult reports how a fetch ended and what it cost.
type FetchResult struct {
	Status   FetchStatus
	Body     []byte
	Attempts uint
	Waited   time.Duration
}

type TrelloClient struct {
	Client      *http.Client
	BaseURL     string
	APIKey      string
	APIToken    string
	BoardID     string
	CallbackURL string
	MaxAttempts uint
	RetryDelay  time.Duration
	DumpDir     string
}

func NewTrelloClient(cfg config.TrelloConfig) *TrelloClient {
	return &TrelloClient{
		Client:      &http.Client{Timeout: 60 * time.Second},
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		APIToken:    cfg.APIToken,
		BoardID:     cfg.BoardID,
		CallbackURL: cfg.CallbackURL,
		MaxAttempts: cfg.MaxAttempts,
		RetryDelay:  cfg.RetryDelay,
		DumpDir:     cfg.DumpDir,
	}
}

func (tc *TrelloClient) resource(kind ResourceKind, id string) (string, url.Values, error) {
	params := url.Values{}
	params.Set("key", tc.APIKey)
	params.Set("token", tc.APIToken)

	switch kind {
	case KindBoard:
		params.Set("customFields", "true")
		params.Set("cards", "all")
		params.Set("fields", "all")
		params.Set("members", "all")
		params.Set("labels", "all")
		params.Set("lists", "all")
		params.Set("actions", "all")
		return "boards/" + tc.BoardID, params, nil
	case KindLists:
		return "boards/" + tc.BoardID + "/lists", params, nil
	case KindCards:
		// customFieldItems is ignored on the board request
		params.Set("customFieldItems", "true")
		return "boards/" + tc.BoardID + "/cards", params, nil
	case KindCustomFieldItems:
		if id == "" {
			return "", nil, errors.New("customFieldItems requires a card id")
		}
		return "cards/" + id + "/customFieldItems", params, nil
	}
	return "", nil, fmt.Errorf("invalid resource requested: %q", kind)
}

// Fetch GETs one resource. A 429 is retried with a fixed delay up to
// MaxAttempts times; exhausting them yields FetchGaveUp with a nil error.
// Any other non-200 status is returned as *APIError without retrying.
func (tc *TrelloClient) Fetch(ctx context.Context, kind ResourceKind, id string) (FetchResult, error) {
	path, params, err := tc.resource(kind, id)
	if err != nil {
		return FetchResult{}, err
	}
	fullURL := strings.TrimSuffix(tc.BaseURL, "/") + "/" + path + "?" + params.Encode()

	attempts := tc.MaxAttempts
	if attempts == 0 {
		attempts = 1
	}

	var result FetchResult
	err = retry.Do(
		func() error {
			result.Attempts++
			body, err := tc.get(ctx, fullURL)
			if err != nil {
				return err
			}
			result.Body = body
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(tc.RetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, errRateLimited)
		}),
		retry.OnRetry(func(n uint, err error) {
			if n+1 < attempts {
				result.Waited += tc.RetryDelay
				zap.L().Warn("API rate limit exceeded - waiting a few seconds then retrying...",
					zap.String("resource", path), zap.Uint("attempt", n+1))
			}
		}),
	)
	if errors.Is(err, errRateLimited) {
		zap.L().Error("API rate limit exceeded on every attempt; giving up on this request.",
			zap.String("resource", path), zap.Uint("attempts", result.Attempts))
		result.Status = FetchGaveUp
		result.Body = nil
		return result, nil
	}
	if err != nil {
		return result, err
	}

	result.Status = FetchSuccess
	tc.dump(path, result.Body)
	return result, nil
}

func (tc *TrelloClient) get(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create get request: %w", err)
	}

	resp, err := tc.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send get request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read Trello response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return bodyBytes, nil
	case http.StatusTooManyRequests:
		return nil, errRateLimited
	}
	return nil, &APIError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(bodyBytes)}
}

// dump writes the indented response next to the other raw dumps. Failures
// only cost the debug copy, so they are logged and ignored.
func (tc *TrelloClient) dump(path string, body []byte) {
	if tc.DumpDir == "" {
		return
	}
	var out bytes.Buffer
	if err := json.Indent(&out, body, "", "   "); err != nil {
		zap.L().Warn("Response is not valid JSON; not dumping", zap.String("resource", path), zap.Error(err))
		return
	}
	name := filepath.Join(tc.DumpDir, strings.ReplaceAll(path, "/", "_")+".json")
	if err := os.MkdirAll(tc.DumpDir, 0o755); err != nil {
		zap.L().Warn("Failed to create dump directory", zap.String("dir", tc.DumpDir), zap.Error(err))
		return
	}
	if err := os.WriteFile(name, out.Bytes(), 0o644); err != nil {
		zap.L().Warn("Failed to dump response", zap.String("file", name), zap.Error(err))
	}
}

// FetchBoard returns the board with lists, members, custom fields and
// actions. It returns ErrGaveUp when rate limiting never cleared.
func (tc *TrelloClient) FetchBoard(ctx context.Context) (*models.Board, error) {
	res, err := tc.Fetch(ctx, KindBoard, tc.BoardID)
	if err != nil {
		return nil, err
	}
	if res.Status == FetchGaveUp {
		return nil, fmt.Errorf("board %s: %w", tc.BoardID, ErrGaveUp)
	}
	var board models.Board
	if err := json.Unmarshal(res.Body, &board); err != nil {
		return nil, fmt.Errorf("failed to decode Trello board: %w", err)
	}
	return &board, nil
}

// FetchCards returns every card on the board including customFieldItems.
func (tc *TrelloClient) FetchCards(ctx context.Context) ([]models.Card, error) {
	res, err := tc.Fetch(ctx, KindCards, "")
	if err != nil {
		return nil, err
	}
	if res.Status == FetchGaveUp {
		return nil, fmt.Errorf("cards of board %s: %w", tc.BoardID, ErrGaveUp)
	}
	var cards []models.Card
	if err := json.Unmarshal(res.Body, &cards); err != nil {
		return nil, fmt.Errorf("failed to decode Trello cards: %w", err)
	}
	return cards, nil
}

func (tc *TrelloClient) RegisterWebhook(ctx context.Context, boardId string) (string, error) {
	apiURL := strings.TrimSuffix(tc.BaseURL, "/") + "/webhooks/"

	formData := url.Values{}
	formData.Set("key", tc.APIKey)
	formData.Set("token", tc.APIToken)
	formData.Set("callbackURL", tc.CallbackURL)
	formData.Set("idModel", boardId)
	formData.Set("description", "Webhook for Trello board reports")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewBufferString(formData.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create post request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := tc.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send post request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", &APIError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(bodyBytes)}
	}

	var webhook struct {
		ID string `json:"id"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&webhook); err != nil {
		return "", fmt.Errorf("failed to decode Trello response: %w", err)
	}

	zap.L().Info("Successfully registered webhook", zap.String("webhookID", webhook.ID), zap.String("boardID", boardId))

	return webhook.ID, nil
}

func (tc *TrelloClient) DeleteWebhook(ctx context.Context, webhookID string) error {
	apiURL := strings.TrimSuffix(tc.BaseURL, "/") + "/webhooks/" + webhookID

	formData := url.Values{}
	formData.Set("key", tc.APIKey)
	formData.Set("token", tc.APIToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, apiURL+"?"+formData.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create delete request: %w", err)
	}

	resp, err := tc.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send delete request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(bodyBytes)}
	}

	zap.L().Info("Successfully deleted webhook", zap.String("webhookID", webhookID))

	return nil
}
