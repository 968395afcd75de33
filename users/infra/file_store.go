// Package infra implementa o repositório de usuários sobre um único documento JSON.
package infra

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"middleware-users/users/domain"
)

// FileStore guarda toda a coleção em um arquivo JSON (array de usuários).
//
// Cada Create lê o documento inteiro, acrescenta o registro e regrava o
// documento inteiro (custo O(n)). O ciclo load/append/persist roda sob mu,
// então há um único escritor por processo.
type FileStore struct {
	mu   sync.Mutex
	path string

	rename func(oldpath, newpath string) error
}

var _ domain.Repository = (*FileStore)(nil)

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, rename: os.Rename}
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Create(ctx context.Context, name, email string) (domain.User, error) {
	if err := domain.Validate(name, email); err != nil {
		return domain.User{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return domain.User{}, err
	}

	u := domain.User{ID: domain.NextID(users), Name: name, Email: email}
	users = append(users, u)

	// o id só vale depois que o documento foi gravado
	if err := s.persist(users); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (s *FileStore) Get(_ context.Context, id int) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return domain.User{}, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (s *FileStore) List(_ context.Context) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

// load trata arquivo inexistente como coleção vazia.
func (s *FileStore) load() ([]domain.User, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.User{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read users file")
	}
	if len(data) == 0 {
		return []domain.User{}, nil
	}

	var users []domain.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, errors.Wrapf(err, "decode users file %s", s.path)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

// persist grava em arquivo temporário no mesmo diretório e renomeia sobre o
// destino, então um leitor nunca vê documento pela metade.
func (s *FileStore) persist(users []domain.User) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode users")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create users dir")
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp users file")
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "write temp users file")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "sync temp users file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp users file")
	}
	if err := s.rename(tmpName, s.path); err != nil {
		return errors.Wrap(err, "replace users file")
	}
	return nil
}
