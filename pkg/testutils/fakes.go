package testutils

import (
	"context"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/librisapp/libris/pkg/models"
)

// FakeStore is an in-memory object store.
type FakeStore struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Deleted []string
}

func NewFakeStore() *FakeStore {
	return &FakeStore{Objects: map[string][]byte{}}
}

func (s *FakeStore) Upload(_ context.Context, name, contentType string, body io.Reader) (*models.Image, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	ext := strings.TrimPrefix(path.Ext(name), ".")
	id := "libris/" + uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Objects[id] = b
	return &models.Image{
		PublicID:     id,
		URL:          "https://cdn.example.com/" + id + "." + ext,
		Format:       ext,
		ResourceType: strings.SplitN(contentType, "/", 2)[0],
	}, nil
}

func (s *FakeStore) Delete(_ context.Context, publicID, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Objects, publicID)
	s.Deleted = append(s.Deleted, publicID)
	return nil
}

type SentVerification struct {
	To       string
	Username string
	Link     string
}

// FakeMailer records the emails it's asked to send.
type FakeMailer struct {
	mu   sync.Mutex
	Sent []SentVerification
}

func (m *FakeMailer) SendEmailVerification(_ context.Context, to, username, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, SentVerification{to, username, link})
	return nil
}

// LastToken returns the token at the end of the last verification link.
func (m *FakeMailer) LastToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return ""
	}
	link := m.Sent[len(m.Sent)-1].Link
	return link[strings.LastIndex(link, "/")+1:]
}
