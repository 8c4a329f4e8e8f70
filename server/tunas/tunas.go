// Package tunas has services for interacting with the lensd backend,
// decoupled from the API that accesses it.
package tunas

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/dekarrin/lens/internal/registry"
	"github.com/dekarrin/lens/lens"
	"github.com/dekarrin/lens/server/dao"
	"github.com/google/uuid"
)

// Service is a service for interacting with and modifying lensd's backend.
// It performs the actions requested by the API layer and makes calls to
// server persistence to preserve session state between them.
//
// The zero-value of Service is not ready to be used; assign a valid DAO
// store to DB before attempting to use it.
type Service struct {
	// DB is the persistence store of the service.
	DB dao.Store
}

// Open runs the named lens's Get over text, creating and persisting a new
// session that remembers text as the weaving baseline for whatever Put comes
// next.
func (svc Service) Open(ctx context.Context, lensName, text string) (dao.Session, any, error) {
	entry, err := registry.Lookup(lensName)
	if err != nil {
		return dao.Session{}, nil, err
	}

	model, err := lens.Get(entry.Build(), text)
	if err != nil {
		return dao.Session{}, nil, fmt.Errorf("get: %w", err)
	}

	modelJSON, err := json.Marshal(model)
	if err != nil {
		return dao.Session{}, nil, fmt.Errorf("encode model: %w", err)
	}

	sesh := dao.Session{
		LensName:     entry.Name,
		OriginalText: text,
		ModelJSON:    modelJSON,
	}
	sesh, err = svc.DB.Sessions().Create(ctx, sesh)
	if err != nil {
		return dao.Session{}, nil, fmt.Errorf("save session: %w", err)
	}

	return sesh, model, nil
}

// GetSession retrieves a saved session along with its current model,
// decoded into the concrete Go type its lens produces.
func (svc Service) GetSession(ctx context.Context, id uuid.UUID) (dao.Session, any, error) {
	sesh, err := svc.DB.Sessions().GetByID(ctx, id)
	if err != nil {
		return dao.Session{}, nil, err
	}

	model, err := svc.decodeModel(sesh)
	if err != nil {
		return dao.Session{}, nil, err
	}

	return sesh, model, nil
}

// Apply merges editJSON onto the session's stored model, then Puts the
// result against the session's original text, advancing the session's
// OriginalText to the newly rendered text so the next call weaves against
// it in turn.
func (svc Service) Apply(ctx context.Context, id uuid.UUID, editJSON []byte) (dao.Session, string, error) {
	sesh, err := svc.DB.Sessions().GetByID(ctx, id)
	if err != nil {
		return dao.Session{}, "", err
	}

	entry, err := registry.Lookup(sesh.LensName)
	if err != nil {
		return dao.Session{}, "", err
	}

	target := entry.New()
	if err := json.Unmarshal(sesh.ModelJSON, target); err != nil {
		return dao.Session{}, "", fmt.Errorf("decode stored model: %w", err)
	}
	if len(editJSON) > 0 {
		if err := json.Unmarshal(editJSON, target); err != nil {
			return dao.Session{}, "", fmt.Errorf("decode requested edit: %w", err)
		}
	}

	model := derefPointer(target)

	out, err := lens.Put(entry.Build(), model, lens.WithOriginal(sesh.OriginalText))
	if err != nil {
		return dao.Session{}, "", fmt.Errorf("put: %w", err)
	}

	modelJSON, err := json.Marshal(model)
	if err != nil {
		return dao.Session{}, "", fmt.Errorf("encode model: %w", err)
	}

	sesh.OriginalText = out
	sesh.ModelJSON = modelJSON
	sesh, err = svc.DB.Sessions().Update(ctx, sesh.ID, sesh)
	if err != nil {
		return dao.Session{}, "", fmt.Errorf("save session: %w", err)
	}

	return sesh, out, nil
}

// Close deletes a session.
func (svc Service) Close(ctx context.Context, id uuid.UUID) (dao.Session, error) {
	return svc.DB.Sessions().Delete(ctx, id)
}

// LensInfo describes one lens available to open a session against.
type LensInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Lenses lists every lens registered for use with Open.
func (svc Service) Lenses() []LensInfo {
	names := registry.Names()
	infos := make([]LensInfo, len(names))
	for i, name := range names {
		entry, err := registry.Lookup(name)
		if err != nil {
			continue
		}
		infos[i] = LensInfo{Name: entry.Name, Description: entry.Description}
	}
	return infos
}

func (svc Service) decodeModel(sesh dao.Session) (any, error) {
	entry, err := registry.Lookup(sesh.LensName)
	if err != nil {
		return nil, err
	}

	target := entry.New()
	if err := json.Unmarshal(sesh.ModelJSON, target); err != nil {
		return nil, fmt.Errorf("decode stored model: %w", err)
	}

	return derefPointer(target), nil
}

// derefPointer takes the *T registry.Entry.New returns and gives back the T
// lens.Get/lens.Put deal in, since every example lens's container is built
// against a value type, not a pointer to one.
func derefPointer(ptr any) any {
	v := reflect.ValueOf(ptr)
	if v.Kind() == reflect.Ptr {
		return v.Elem().Interface()
	}
	return ptr
}
