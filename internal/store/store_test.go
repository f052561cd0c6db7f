package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_tube/internal/engine"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(t.TempDir(), "test-secret", engine.Settings{
		MinRequestDelay: 1000,
		MaxRequestDelay: 3000,
		Headless:        true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSettingsDefaults(t *testing.T) {
	st := openTestStore(t)

	settings, err := st.Settings()
	require.NoError(t, err)
	assert.False(t, settings.UseProxy)
	assert.True(t, settings.Headless)
	assert.Equal(t, 1000, settings.MinRequestDelay)
	assert.Equal(t, 3000, settings.MaxRequestDelay)
}

func TestSettingsRoundtrip(t *testing.T) {
	st := openTestStore(t)

	want := engine.Settings{
		UseProxy:        true,
		ProxyList:       []string{"socks5://p1:1080", "http://p2:8080"},
		MinRequestDelay: 500,
		MaxRequestDelay: 2000,
		Headless:        false,
	}
	require.NoError(t, st.SaveSettings(want))

	got, err := st.Settings()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestUpdateSettingsPartial(t *testing.T) {
	st := openTestStore(t)

	useProxy := true
	got, err := st.UpdateSettings(SettingsPatch{
		UseProxy:  &useProxy,
		ProxyList: []string{" socks5://p:1080 ", ""},
	})
	require.NoError(t, err)
	assert.True(t, got.UseProxy)
	assert.Equal(t, []string{"socks5://p:1080"}, got.ProxyList)
	// Untouched fields keep their defaults.
	assert.Equal(t, 1000, got.MinRequestDelay)
	assert.True(t, got.Headless)

	// Persisted, not just merged in memory.
	reread, err := st.Settings()
	require.NoError(t, err)
	assert.Equal(t, got, reread)
}

func TestUpdateSettingsRejectsInvertedWindow(t *testing.T) {
	st := openTestStore(t)

	min, max := 5000, 1000
	_, err := st.UpdateSettings(SettingsPatch{MinRequestDelay: &min, MaxRequestDelay: &max})
	assert.Error(t, err)
}

func TestSessionRoundtrip(t *testing.T) {
	st := openTestStore(t)

	none, err := st.Session()
	require.NoError(t, err)
	assert.Nil(t, none, "fresh store should have no session")

	want := &engine.Session{
		AccessToken:  "at-123",
		RefreshToken: "rt-456",
		ExpiresAt:    time.Now().Add(time.Hour).UnixMilli(),
		Email:        "user@example.com",
		Cookies: []engine.Cookie{
			{Name: "SID", Value: "secret", Domain: ".youtube.com", Path: "/", Secure: true},
		},
	}
	require.NoError(t, st.SaveSession(want))

	got, err := st.Session()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.AccessToken, got.AccessToken)
	assert.Equal(t, want.Cookies, got.Cookies)
}

func TestSessionEncryptedAtRest(t *testing.T) {
	st := openTestStore(t)
	require.NoError(t, st.SaveSession(&engine.Session{
		AccessToken: "plaintext-token",
		ExpiresAt:   time.Now().Add(time.Hour).UnixMilli(),
	}))

	var stored string
	require.NoError(t, st.db.QueryRow(`SELECT encrypted_data FROM auth_sessions`).Scan(&stored))
	assert.NotContains(t, stored, "plaintext-token")
}

func TestSessionExpiry(t *testing.T) {
	st := openTestStore(t)
	require.NoError(t, st.SaveSession(&engine.Session{
		AccessToken: "old",
		ExpiresAt:   time.Now().Add(-time.Minute).UnixMilli(),
	}))

	got, err := st.Session()
	require.NoError(t, err)
	assert.Nil(t, got, "expired session must read as absent")
}

func TestSessionReplace(t *testing.T) {
	st := openTestStore(t)
	exp := time.Now().Add(time.Hour).UnixMilli()
	require.NoError(t, st.SaveSession(&engine.Session{AccessToken: "first", ExpiresAt: exp}))
	require.NoError(t, st.SaveSession(&engine.Session{AccessToken: "second", ExpiresAt: exp}))

	var count int
	require.NoError(t, st.db.QueryRow(`SELECT COUNT(*) FROM auth_sessions`).Scan(&count))
	assert.Equal(t, 1, count)

	got, err := st.Session()
	require.NoError(t, err)
	assert.Equal(t, "second", got.AccessToken)
}

func TestDeleteSession(t *testing.T) {
	st := openTestStore(t)
	require.NoError(t, st.SaveSession(&engine.Session{
		AccessToken: "x", ExpiresAt: time.Now().Add(time.Hour).UnixMilli(),
	}))
	require.NoError(t, st.DeleteSession())

	got, err := st.Session()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestHistory(t *testing.T) {
	st := openTestStore(t)

	videos := []engine.Video{
		{ID: "v1", Title: "First", ViewCount: 1000, Source: engine.SourceAPI},
		{ID: "v2", Title: "Second", ViewCount: 2000, Source: engine.SourceAPI},
	}
	id, err := st.SaveHistory("golang", engine.SourceAPI, videos)
	require.NoError(t, err)
	require.Positive(t, id)

	_, err = st.SaveHistory("rust", engine.SourceBrowser, nil)
	require.NoError(t, err)

	entries, err := st.ListHistory(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "rust", entries[0].Query, "newest first")
	assert.Equal(t, "browser", entries[0].Source)
	assert.Equal(t, 2, entries[1].Total)

	got, err := st.HistoryVideos(id)
	require.NoError(t, err)
	assert.Equal(t, videos, got)

	_, err = st.HistoryVideos(99999)
	assert.ErrorIs(t, err, ErrHistoryNotFound)
}
