package connection

import (
	"bytes"
	"encoding/json"

	"github.com/bytedance/sonic"

	platformerrors "campuslink-client-go/internal/platform/errors"
)

// normalizePosts folds the response conventions the backend has shipped
// over time into one shape. Priority order:
//
//  1. {"data": {"results": [...], "count": N}}
//  2. {"data": {"posts": [...]}}
//  3. a bare array of posts
//
// An envelope whose data field is itself a bare array also lands in case 3.
func normalizePosts(payload []byte) (PostPage, error) {
	body := unwrapData(payload)

	if isJSONArray(body) {
		var items []Post
		if err := sonic.Unmarshal(body, &items); err != nil {
			return PostPage{}, platformerrors.Wrap(platformerrors.KindUnknown, "posts",
				"decode post list", err)
		}
		return PostPage{Items: items, Total: len(items)}, nil
	}

	var shaped struct {
		Results []Post `json:"results"`
		Posts   []Post `json:"posts"`
		Count   int    `json:"count"`
		Total   int    `json:"total"`
	}
	if err := sonic.Unmarshal(body, &shaped); err != nil {
		return PostPage{}, platformerrors.Wrap(platformerrors.KindUnknown, "posts",
			"decode post payload", err)
	}

	switch {
	case shaped.Results != nil:
		total := shaped.Count
		if total == 0 {
			total = len(shaped.Results)
		}
		return PostPage{Items: shaped.Results, Total: total}, nil
	case shaped.Posts != nil:
		total := shaped.Count
		if total == 0 {
			total = shaped.Total
		}
		if total == 0 {
			total = len(shaped.Posts)
		}
		return PostPage{Items: shaped.Posts, Total: total}, nil
	default:
		return PostPage{}, platformerrors.New(platformerrors.KindUnknown, "posts",
			"unrecognized post listing payload")
	}
}

// unwrapData peels a {"data": ...} envelope when present, returning the
// original payload otherwise.
func unwrapData(payload []byte) []byte {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := sonic.Unmarshal(payload, &envelope); err != nil {
		return payload
	}
	data := bytes.TrimSpace(envelope.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return payload
	}
	return data
}

func isJSONArray(payload []byte) bool {
	trimmed := bytes.TrimSpace(payload)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// decodePayload unmarshals the (possibly enveloped) payload into target.
func decodePayload(payload []byte, target any) error {
	return sonic.Unmarshal(unwrapData(payload), target)
}
