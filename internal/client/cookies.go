package client

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// storedCookie is the on-disk form of the auth cookie.
type storedCookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Expires time.Time `json:"expires"`
}

// cookieFile persists the server's auth cookie between runs, standing in
// for the browser's cookie store. An empty path disables persistence.
type cookieFile struct {
	path string
}

func (f cookieFile) load(jar http.CookieJar, u *url.URL) error {
	if f.path == "" {
		return nil
	}
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	var stored []storedCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		return err
	}
	now := time.Now()
	var cookies []*http.Cookie
	for _, c := range stored {
		if !c.Expires.IsZero() && c.Expires.Before(now) {
			continue
		}
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/", Expires: c.Expires})
	}
	jar.SetCookies(u, cookies)
	return nil
}

// save records the cookies a response set. Cleared cookies remove the file.
func (f cookieFile) save(set []*http.Cookie) error {
	if f.path == "" {
		return nil
	}
	now := time.Now()
	var stored []storedCookie
	for _, c := range set {
		if c.Value == "" || c.MaxAge < 0 {
			continue
		}
		expires := c.Expires
		if c.MaxAge > 0 {
			expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		}
		stored = append(stored, storedCookie{Name: c.Name, Value: c.Value, Expires: expires})
	}
	if len(stored) == 0 {
		return f.clear()
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

func (f cookieFile) clear() error {
	if f.path == "" {
		return nil
	}
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
