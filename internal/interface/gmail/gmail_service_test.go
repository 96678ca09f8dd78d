package gmail

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path"
	"testing"
	"time"

	"flightlog-service/internal/domain/entity"
	"flightlog-service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

type fakeEmailRepo struct {
	saved     []*entity.Email
	lastEmail *entity.Email
}

func (f *fakeEmailRepo) Save(ctx context.Context, email *entity.Email) error {
	f.saved = append(f.saved, email)
	return nil
}

func (f *fakeEmailRepo) FindUnprocessed(ctx context.Context, limit int) ([]*entity.Email, error) {
	return nil, nil
}

func (f *fakeEmailRepo) FindAll(ctx context.Context) ([]*entity.Email, error) {
	return f.saved, nil
}

func (f *fakeEmailRepo) FindByEmailIDs(ctx context.Context, emailIDs []string) (map[string]*entity.Email, error) {
	return map[string]*entity.Email{}, nil
}

func (f *fakeEmailRepo) GetLastEmail(ctx context.Context) (*entity.Email, error) {
	if f.lastEmail == nil {
		return nil, errors.New("no emails")
	}
	return f.lastEmail, nil
}

func (f *fakeEmailRepo) UpdateStatusByEmailID(ctx context.Context, emailID string, status string, startedAt time.Time) error {
	return nil
}

func (f *fakeEmailRepo) UpdateProcessStepsByEmailID(ctx context.Context, emailID string, steps entity.ProcessSteps) error {
	return nil
}

func (f *fakeEmailRepo) MarkAsProcessedByEmailID(ctx context.Context, emailID, status, provider, errorDetail string, extractedData map[string]interface{}) error {
	return nil
}

func (f *fakeEmailRepo) ResetProcessingEmails(ctx context.Context) error {
	return nil
}

func messageJSON(id string) string {
	body := base64.URLEncoding.EncodeToString([]byte("Flight: VJ123\nFrom: Ho Chi Minh City (SGN)\nTo: Hanoi (HAN)\nDeparture: 15 Jun, 08:30\n"))
	return fmt.Sprintf(`{
		"id": %q,
		"internalDate": "1718400000000",
		"payload": {
			"headers": [
				{"name": "From", "value": "VietJet Air <noreply@vietjetair.com>"},
				{"name": "Subject", "value": "Booking confirmation"}
			],
			"body": {"data": %q}
		}
	}`, id, body)
}

// newTestService points the Gmail client at a local fake API.
func newTestService(t *testing.T, handler http.Handler, repo *fakeEmailRepo) *GmailService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := gmailapi.NewService(context.Background(),
		option.WithoutAuthentication(),
		option.WithEndpoint(server.URL))
	require.NoError(t, err)

	return &GmailService{
		gmailService: svc,
		emailRepo:    repo,
		logger:       logger.NewNopLogger(),
		pollInterval: time.Minute,
		targetYear:   2024,
	}
}

func TestFetchEmailsWalksAllResultPages(t *testing.T) {
	var pageTokens []string

	mux := http.NewServeMux()
	mux.HandleFunc("/gmail/v1/users/me/messages", func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("pageToken")
		pageTokens = append(pageTokens, token)

		w.Header().Set("Content-Type", "application/json")
		if token == "" {
			fmt.Fprint(w, `{"messages":[{"id":"m1"},{"id":"m2"}],"nextPageToken":"page-2"}`)
			return
		}
		fmt.Fprint(w, `{"messages":[{"id":"m3"}]}`)
	})
	mux.HandleFunc("/gmail/v1/users/me/messages/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, messageJSON(path.Base(r.URL.Path)))
	})

	repo := &fakeEmailRepo{}
	service := newTestService(t, mux, repo)

	err := service.FetchEmails(context.Background())
	require.NoError(t, err)

	// Both pages were requested, the second with the continuation token
	assert.Equal(t, []string{"", "page-2"}, pageTokens)

	require.Len(t, repo.saved, 3)
	ids := []string{repo.saved[0].EmailID, repo.saved[1].EmailID, repo.saved[2].EmailID}
	assert.Equal(t, []string{"m1", "m2", "m3"}, ids)
}

func TestFetchEmailsQueriesIncrementallyFromLastEmail(t *testing.T) {
	var queries []string

	mux := http.NewServeMux()
	mux.HandleFunc("/gmail/v1/users/me/messages", func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{}`)
	})

	repo := &fakeEmailRepo{
		lastEmail: &entity.Email{
			EmailID:    "m-last",
			ReceivedAt: time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC),
		},
	}
	service := newTestService(t, mux, repo)

	err := service.FetchEmails(context.Background())
	require.NoError(t, err)

	require.Len(t, queries, 1)
	// Lookback of 3 days from the last stored email, capped at the year end
	assert.Equal(t, "after:2024/06/12 before:2025/01/01", queries[0])
	assert.Empty(t, repo.saved)
}

func TestFetchEmailsStartsAtYearBeginWithoutStoredEmails(t *testing.T) {
	var queries []string

	mux := http.NewServeMux()
	mux.HandleFunc("/gmail/v1/users/me/messages", func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{}`)
	})

	service := newTestService(t, mux, &fakeEmailRepo{})

	err := service.FetchEmails(context.Background())
	require.NoError(t, err)

	require.Len(t, queries, 1)
	assert.Equal(t, "after:2024/01/01 before:2025/01/01", queries[0])
}

func TestLooksLikeFlightEmail(t *testing.T) {
	cases := []struct {
		name  string
		email *entity.Email
		want  bool
	}{
		{
			name:  "known airline domain",
			email: &entity.Email{From: "VietJet Air <noreply@vietjetair.com>", Subject: "Hello"},
			want:  true,
		},
		{
			name:  "subject indicator",
			email: &entity.Email{From: "agent@agency.example.com", Subject: "Your flight confirmation"},
			want:  true,
		},
		{
			name:  "flight designator in subject",
			email: &entity.Email{From: "ops@carrier.example.com", Subject: "Gate change for VN1546"},
			want:  true,
		},
		{
			name:  "newsletter",
			email: &entity.Email{From: "deals@shopping.example.com", Subject: "Weekly savings inside"},
			want:  false,
		},
		{
			name:  "lowercase designator does not count",
			email: &entity.Email{From: "friend@gmail.example.com", Subject: "my trip vn1546 next week"},
			want:  false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, looksLikeFlightEmail(tc.email))
		})
	}
}
