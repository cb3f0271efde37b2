// Copyright (c) 2025 the govclient authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package filestore contains a single-session SessionContainer that seals the
// session into one file on disk, standing in for the secure key-value storage
// a mobile platform would provide.
//
// The file holds an XChaCha20-Poly1305 box; the key is derived from a
// passphrase with argon2id using a per-file salt. Anything that fails to
// open or parse reads as "no session" so that a damaged file sends the user
// back to the login flow instead of crashing the client.
package filestore

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/govhub/govclient/store"
	"github.com/govhub/govclient/types"
	gvLog "github.com/govhub/govclient/util/log"
)

var magic = []byte("GOVS1")

const saltSize = 16

// ErrEmptyPassphrase is returned by New when the passphrase is empty.
var ErrEmptyPassphrase = errors.New("filestore passphrase must not be empty")

// Container stores at most one session in an encrypted file.
type Container struct {
	path       string
	passphrase []byte
	log        gvLog.Logger
}

var _ store.SessionContainer = (*Container)(nil)

type sessionFile struct {
	User  *types.Customer `json:"user"`
	Token string          `json:"token"`
}

// New creates a file-backed session container. The file does not need to
// exist yet.
func New(path, passphrase string, log gvLog.Logger) (*Container, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}
	if log == nil {
		log = gvLog.Noop
	}
	return &Container{path: path, passphrase: []byte(passphrase), log: log}, nil
}

func (c *Container) deriveKey(salt []byte) []byte {
	return argon2.IDKey(c.passphrase, salt, 1, 64*1024, 4, chacha20poly1305.KeySize)
}

func (c *Container) seal(plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(c.deriveKey(salt))
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(magic)+saltSize+len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, magic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, magic), nil
}

func (c *Container) open(data []byte) ([]byte, error) {
	headerSize := len(magic) + saltSize + chacha20poly1305.NonceSizeX
	if len(data) < headerSize || string(data[:len(magic)]) != string(magic) {
		return nil, errors.New("not a govclient session file")
	}
	salt := data[len(magic) : len(magic)+saltSize]
	nonce := data[len(magic)+saltSize : headerSize]
	aead, err := chacha20poly1305.NewX(c.deriveKey(salt))
	if err != nil {
		return nil, err
	}
	return aead.Open(nil, nonce, data[headerSize:], magic)
}

// GetSession reads the stored session. A missing, unreadable or corrupt file
// yields (nil, nil): restore fails open to the login flow.
func (c *Container) GetSession(_ context.Context) (*store.Session, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		c.log.Warnf("Treating unreadable session file as no session: %v", err)
		return nil, nil
	}
	plaintext, err := c.open(data)
	if err != nil {
		c.log.Warnf("Treating undecryptable session file as no session: %v", err)
		return nil, nil
	}
	var parsed sessionFile
	if err = json.Unmarshal(plaintext, &parsed); err != nil || parsed.User == nil || parsed.Token == "" {
		c.log.Warnf("Treating corrupt session file as no session")
		return nil, nil
	}
	return &store.Session{
		Log:       c.log,
		User:      parsed.User,
		Token:     parsed.Token,
		Container: c,
	}, nil
}

// PutSession seals the session and writes it with a rename so a crashed write
// can't leave a half-written file behind.
func (c *Container) PutSession(_ context.Context, session *store.Session) error {
	plaintext, err := json.Marshal(&sessionFile{User: session.User, Token: session.Token})
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	sealed, err := c.seal(plaintext)
	if err != nil {
		return fmt.Errorf("failed to seal session: %w", err)
	}
	tmp := c.path + ".tmp"
	if err = os.WriteFile(tmp, sealed, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}

// DeleteSession removes the session file. A file that is already gone is fine.
func (c *Container) DeleteSession(_ context.Context, _ *store.Session) error {
	err := os.Remove(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
