package github

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/smart-tuition/pkg/errors"
)

var target = Target{Token: "ghp-secret-123", Owner: "teacher", Repo: "ledger", Path: "data/tuition_backup.json"}

func TestGetFileDecodesWrappedBase64(t *testing.T) {
	payload := []byte(`{"students":[{"name":"Nguyễn Văn Anh"}]}`)
	encoded := EncodeContent(payload)
	wrapped := encoded[:10] + "\n" + encoded[10:]

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/teacher/ledger/contents/data/tuition_backup.json", r.URL.Path)
		assert.Equal(t, "Bearer "+target.Token, r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"sha": "abc", "type": "file", "size": len(payload), "content": wrapped})
	}))
	defer srv.Close()

	file, err := NewClient(srv.URL, srv.Client(), 0).GetFile(context.Background(), target)
	require.NoError(t, err)
	assert.Equal(t, "abc", file.SHA)
	assert.Equal(t, payload, file.Content)
}

func TestPutFileOmitsEmptySHA(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client(), 0)
	require.NoError(t, client.PutFile(context.Background(), target, []byte("{}"), "backup", ""))
	_, hasSHA := body["sha"]
	assert.False(t, hasSHA)
	assert.Equal(t, "backup", body["message"])

	require.NoError(t, client.PutFile(context.Background(), target, []byte("{}"), "backup", "abc"))
	assert.Equal(t, "abc", body["sha"])
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   *appErrors.Error
	}{
		{http.StatusUnauthorized, appErrors.ErrRemoteAuth},
		{http.StatusForbidden, appErrors.ErrRemoteAuth},
		{http.StatusNotFound, appErrors.ErrRemoteNotFound},
		{http.StatusConflict, appErrors.ErrRemoteConflict},
		{http.StatusUnprocessableEntity, appErrors.ErrRemoteConflict},
		{http.StatusInternalServerError, appErrors.ErrRemoteUnavailable},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(`{"message":"nope"}`))
		}))
		_, err := NewClient(srv.URL, srv.Client(), 0).GetFile(context.Background(), target)
		srv.Close()

		require.Error(t, err)
		assert.True(t, errors.Is(err, tc.want), "status %d", tc.status)
		assert.NotContains(t, err.Error(), target.Token)
	}
}

func TestNetworkFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, nil, 0).GetFile(context.Background(), target)
	assert.True(t, errors.Is(err, appErrors.ErrRemoteUnavailable))
}

func TestGetRepository(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/teacher/ledger", r.URL.Path)
		_, _ = w.Write([]byte(`{"full_name":"teacher/ledger","private":true,"permissions":{"push":true}}`))
	}))
	defer srv.Close()

	repo, err := NewClient(srv.URL, srv.Client(), 0).GetRepository(context.Background(), target)
	require.NoError(t, err)
	assert.Equal(t, "teacher/ledger", repo.FullName)
	assert.True(t, repo.Private)
	assert.True(t, repo.Permissions.Push)
}

func TestEncodeRoundTripKeepsUnicode(t *testing.T) {
	in := []byte("Lớp Toán – học phí")
	out, err := DecodeContent(EncodeContent(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
