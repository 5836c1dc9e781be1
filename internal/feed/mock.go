package feed

import (
	"context"
	"fmt"
)

// MockClient implements Client from a scripted list of pages, for tests.
// Cursors are the stringified page indexes; an error can be injected at a
// given page to exercise failure paths.
type MockClient struct {
	MediaInfo  Media
	Pages      []Page
	FailAtPage int // 1-based; 0 disables
	FetchCalls int
}

// NewMockClient builds a scripted client whose pages each hold pageSize
// sequentially numbered comments
func NewMockClient(mediaID string, pageCount, pageSize int) *MockClient {
	mock := &MockClient{
		MediaInfo: Media{
			ID:            mediaID,
			Timestamp:     "2024-03-01T12:00:00+0000",
			CommentsCount: pageCount * pageSize,
		},
	}
	seq := 0
	for p := 0; p < pageCount; p++ {
		var page Page
		for i := 0; i < pageSize; i++ {
			page.Items = append(page.Items, RawComment{
				ID:        fmt.Sprintf("c%06d", seq),
				Text:      fmt.Sprintf("comment %d", seq),
				Timestamp: "2024-03-01T12:30:00+0000",
				LikeCount: seq % 7,
				From: Author{
					ID:       fmt.Sprintf("u%05d", seq),
					Username: fmt.Sprintf("user_%05d", seq),
				},
			})
			seq++
		}
		mock.Pages = append(mock.Pages, page)
	}
	mock.chainCursors()
	return mock
}

// chainCursors rewrites NextCursor so page i points at page i+1
func (m *MockClient) chainCursors() {
	for i := range m.Pages {
		if i < len(m.Pages)-1 {
			m.Pages[i].NextCursor = fmt.Sprintf("cursor-%d", i+1)
		} else {
			m.Pages[i].NextCursor = ""
		}
	}
}

func (m *MockClient) FetchMedia(ctx context.Context, mediaID string) (*Media, error) {
	return &m.MediaInfo, nil
}

func (m *MockClient) FetchPage(ctx context.Context, mediaID, cursor string) (*Page, error) {
	m.FetchCalls++

	index := 0
	if cursor != "" {
		if _, err := fmt.Sscanf(cursor, "cursor-%d", &index); err != nil {
			return nil, fmt.Errorf("unknown cursor %q", cursor)
		}
	}
	if m.FailAtPage > 0 && index+1 >= m.FailAtPage {
		return nil, fmt.Errorf("simulated feed outage at page %d", index+1)
	}
	if index >= len(m.Pages) {
		return &Page{}, nil
	}
	page := m.Pages[index]
	return &page, nil
}
