package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/luwen/lingoflash/internal/errors"
	"github.com/luwen/lingoflash/internal/logger"
	"github.com/luwen/lingoflash/internal/models"
)

// Client talks to the remote gateway over HTTP. Quiz generation is slow
// on the server side, so the shared client timeout is generous; callers
// bound individual requests with their context.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *logger.Logger
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 90 * time.Second},
		log:        logger.Default().WithPrefix("gateway"),
	}
}

type submitPayload struct {
	ItemID  int64 `json:"word_id"`
	Quality int   `json:"quality"`
}

func (c *Client) FetchQueue(ctx context.Context) ([]models.ReviewItem, error) {
	log := logger.FromContext(ctx).WithPrefix("gateway")

	log.Debug("fetching review queue")
	start := time.Now()

	var items []models.ReviewItem
	if err := c.do(ctx, http.MethodGet, "/study/queue", nil, &items); err != nil {
		log.Error("failed to fetch review queue: %v", err)
		return nil, apperrors.NewFetchError("review queue", err)
	}

	log.Info("fetched %d review items in %v", len(items), time.Since(start))
	return items, nil
}

func (c *Client) SubmitResult(ctx context.Context, itemID int64, quality models.Quality) error {
	log := logger.FromContext(ctx).WithPrefix("gateway").WithField("item_id", itemID)

	log.Debug("submitting review result: quality=%d", int(quality))

	payload := submitPayload{ItemID: itemID, Quality: int(quality)}
	if err := c.do(ctx, http.MethodPost, "/study/submit", payload, nil); err != nil {
		log.Error("failed to submit review result: %v", err)
		return apperrors.NewSubmitError("review result", err)
	}

	log.Debug("review result accepted")
	return nil
}

func (c *Client) GenerateQuiz(ctx context.Context, contentID int64) ([]models.QuizQuestion, error) {
	log := logger.FromContext(ctx).WithPrefix("gateway").WithField("content_id", contentID)

	log.Debug("requesting quiz generation")
	start := time.Now()

	var questions []models.QuizQuestion
	path := fmt.Sprintf("/reading/%d/quiz", contentID)
	if err := c.do(ctx, http.MethodPost, path, nil, &questions); err != nil {
		log.Error("quiz generation failed after %v: %v", time.Since(start), err)
		return nil, apperrors.NewFetchError("quiz questions", err)
	}

	log.Info("generated %d quiz questions in %v", len(questions), time.Since(start))
	return questions, nil
}

func (c *Client) SubmitMissedBatch(ctx context.Context, records []models.MissedQuestion) error {
	log := logger.FromContext(ctx).WithPrefix("gateway")

	log.Debug("submitting %d missed questions", len(records))

	if err := c.do(ctx, http.MethodPost, "/mistakes/batch_add", records, nil); err != nil {
		log.Error("failed to submit missed questions: %v", err)
		return apperrors.NewSubmitError("missed questions", err)
	}

	log.Info("submitted %d missed questions", len(records))
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, string(snippet))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s %s: decode response: %w", method, path, err)
		}
	}
	return nil
}
