package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perguntas-ebd/backend/internal/models"
	"github.com/perguntas-ebd/backend/internal/moderators"
)

func TestSubmit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/rooms/doutrina/questions", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Qual o significado de graça?", body["text"])

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": models.Question{
				ID:     uuid.New(),
				Room:   "doutrina",
				Text:   body["text"],
				Status: models.StatusPending,
			},
		})
	}))
	defer srv.Close()

	q, err := NewAPI(srv.URL).Submit(context.Background(), "doutrina", "Qual o significado de graça?")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, q.Status)
}

func TestSubmitServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "failed to create question",
		})
	}))
	defer srv.Close()

	_, err := NewAPI(srv.URL).Submit(context.Background(), "doutrina", "oi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create question")
}

func TestModeratorCallCarriesKeyAndCredential(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "s3cret", r.URL.Query().Get("key"))
		assert.Equal(t, "jonatasfaria", r.Header.Get(moderators.CredentialHeader))
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": map[string]string{}})
	}))
	defer srv.Close()

	api := NewAPI(srv.URL)
	api.SetPerimeterKey("s3cret")
	api.SetCredential("jonatasfaria")
	assert.NoError(t, api.UpdateStatus(context.Background(), uuid.New(), models.StatusHighlighted))
}

func TestPerimeterRedirectSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusFound)
	}))
	defer srv.Close()

	api := NewAPI(srv.URL)
	api.SetPerimeterKey("wrong")
	_, _, err := api.Login(context.Background(), "jonatasfaria")
	assert.ErrorIs(t, err, ErrPerimeter)
}

func TestDeleteAcceptsNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	assert.NoError(t, NewAPI(srv.URL).Delete(context.Background(), uuid.New()))
}
