package audio

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/luwen/lingoflash/internal/errors"
)

const defaultDictVoiceBaseURL = "https://dict.youdao.com/dictvoice"

// DictResolver maps a word spelling to a dictionary pronunciation URL.
// Absolute URLs (article narration) pass through untouched.
type DictResolver struct {
	baseURL string
}

func NewDictResolver(baseURL string) *DictResolver {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultDictVoiceBaseURL
	}
	return &DictResolver{baseURL: strings.TrimRight(baseURL, "?")}
}

var _ Resolver = (*DictResolver)(nil)

func (r *DictResolver) Resolve(_ context.Context, sourceKey string) (string, error) {
	key := strings.TrimSpace(sourceKey)
	if key == "" {
		return "", errors.NewValidationError("sourceKey", "empty")
	}
	if strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
		return key, nil
	}
	// type=1 selects the American voice.
	return fmt.Sprintf("%s?audio=%s&type=1", r.baseURL, url.QueryEscape(key)), nil
}
