// Package client implements the terminal clients' access to the backend:
// a thin HTTP wrapper over the JSON API and a websocket subscription that
// feeds change events into a feed.Feed.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/perguntas-ebd/backend/internal/models"
	"github.com/perguntas-ebd/backend/internal/moderators"
)

// API calls the backend HTTP endpoints. Moderator calls carry the
// perimeter key as a query parameter and the credential as a header.
type API struct {
	baseURL    string
	perimeter  string
	credential string
	httpClient *http.Client
}

// NewAPI creates an API client for the given base URL (e.g. http://localhost:8080).
func NewAPI(baseURL string) *API {
	return &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				// the perimeter answers with a redirect; surface it instead
				// of silently following to the student root
				return http.ErrUseLastResponse
			},
		},
	}
}

// SetPerimeterKey sets the shared secret for the moderator routes.
func (a *API) SetPerimeterKey(key string) { a.perimeter = key }

// SetCredential sets the moderator credential sent on authenticated calls.
func (a *API) SetCredential(credential string) { a.credential = credential }

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// ErrPerimeter means the moderator route rejected the perimeter key.
var ErrPerimeter = errors.New("perimeter key rejected")

func (a *API) do(ctx context.Context, method, path string, moderator bool, body, out interface{}) error {
	u := a.baseURL + path
	if moderator && a.perimeter != "" {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		u += sep + "key=" + url.QueryEscape(a.perimeter)
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if moderator && a.credential != "" {
		req.Header.Set(moderators.CredentialHeader, a.credential)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusFound {
		return ErrPerimeter
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response (%s): %w", resp.Status, err)
	}
	if !env.Success {
		if env.Error != "" {
			return fmt.Errorf("%s", env.Error)
		}
		return fmt.Errorf("request failed: %s", resp.Status)
	}
	if out != nil {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

// RoomInfo is a registry entry with its current question count.
type RoomInfo struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Questions int    `json:"questions"`
}

// Rooms lists the room registry with question counts.
func (a *API) Rooms(ctx context.Context) ([]RoomInfo, error) {
	var out struct {
		Rooms []RoomInfo `json:"rooms"`
	}
	if err := a.do(ctx, http.MethodGet, "/rooms", false, nil, &out); err != nil {
		return nil, err
	}
	return out.Rooms, nil
}

// ListQuestions is the bulk fetch for a room, newest first.
func (a *API) ListQuestions(ctx context.Context, room string) ([]models.Question, error) {
	var out struct {
		Questions []models.Question `json:"questions"`
	}
	if err := a.do(ctx, http.MethodGet, "/rooms/"+url.PathEscape(room)+"/questions", false, nil, &out); err != nil {
		return nil, err
	}
	return out.Questions, nil
}

// Submit sends a new anonymous question to a room.
func (a *API) Submit(ctx context.Context, room, text string) (*models.Question, error) {
	var q models.Question
	body := map[string]string{"text": text}
	if err := a.do(ctx, http.MethodPost, "/rooms/"+url.PathEscape(room)+"/questions", false, body, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// Login resolves a credential; the returned normalized credential is what
// the client persists and presents on subsequent calls.
func (a *API) Login(ctx context.Context, credential string) (string, *moderators.Profile, error) {
	var out struct {
		Credential string             `json:"credential"`
		Profile    moderators.Profile `json:"profile"`
	}
	body := map[string]string{"credential": credential}
	if err := a.do(ctx, http.MethodPost, "/moderator/login", true, body, &out); err != nil {
		return "", nil, err
	}
	return out.Credential, &out.Profile, nil
}

// ValidateSession revalidates the configured credential. An error means
// the persisted session is stale and must be discarded.
func (a *API) ValidateSession(ctx context.Context) (*moderators.Profile, error) {
	var out struct {
		Profile moderators.Profile `json:"profile"`
	}
	if err := a.do(ctx, http.MethodGet, "/moderator/session", true, nil, &out); err != nil {
		return nil, err
	}
	return &out.Profile, nil
}

// UpdateStatus issues the remote status mutation. Together with Delete
// this satisfies feed.Remote.
func (a *API) UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status) error {
	body := map[string]models.Status{"status": status}
	return a.do(ctx, http.MethodPatch, "/questions/"+id.String()+"/status", true, body, nil)
}

// Delete issues the remote delete mutation.
func (a *API) Delete(ctx context.Context, id uuid.UUID) error {
	return a.do(ctx, http.MethodDelete, "/questions/"+id.String(), true, nil, nil)
}
