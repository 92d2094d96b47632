package repo

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/odvcencio/dotlog/pkg/object"
)

const sshSignaturePrefix = "sshsig-v1"

// NewSSHSigner returns a CommitSigner producing
// "sshsig-v1:<format>:<pubkey b64>:<sig b64>" signatures.
func NewSSHSigner(signer ssh.Signer) CommitSigner {
	pubB64 := base64.StdEncoding.EncodeToString(signer.PublicKey().Marshal())
	return func(payload []byte) (string, error) {
		sig, err := signer.Sign(rand.Reader, payload)
		if err != nil {
			return "", err
		}
		sigB64 := base64.StdEncoding.EncodeToString(sig.Blob)
		return fmt.Sprintf("%s:%s:%s:%s", sshSignaturePrefix, sig.Format, pubB64, sigB64), nil
	}
}

func (r *Repo) signaturePath(id object.Hash) string {
	return filepath.Join(r.LogDir, signaturesDir, id.String())
}

// SignCommit signs the stored bytes of commit id and writes the signature
// to .log/signatures/<id>, replacing any earlier one.
func (r *Repo) SignCommit(id object.Hash, signer CommitSigner) error {
	payload, ok, err := r.Store.Get(id)
	if err != nil {
		return fmt.Errorf("sign commit %s: %w", id.Short(), err)
	}
	if !ok {
		return fmt.Errorf("sign commit %s: %w", id.Short(), object.ErrMissingObject)
	}
	sig, err := signer(payload)
	if err != nil {
		return fmt.Errorf("sign commit %s: %w", id.Short(), err)
	}
	if err := os.MkdirAll(filepath.Join(r.LogDir, signaturesDir), 0o755); err != nil {
		return fmt.Errorf("sign commit: %w", err)
	}
	if err := writeFileAtomic(r.signaturePath(id), []byte(sig+"\n")); err != nil {
		return fmt.Errorf("sign commit %s: %w", id.Short(), err)
	}
	return nil
}

// CommitSignature returns the stored signature for commit id, or
// ErrNoSignature.
func (r *Repo) CommitSignature(id object.Hash) (string, error) {
	data, err := os.ReadFile(r.signaturePath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("commit %s: %w", id.Short(), ErrNoSignature)
		}
		return "", fmt.Errorf("commit %s: %w", id.Short(), err)
	}
	return strings.TrimSpace(string(data)), nil
}

// VerifyCommit checks the stored signature of commit id against the
// commit's current bytes and returns the signing key.
func (r *Repo) VerifyCommit(id object.Hash) (ssh.PublicKey, error) {
	sig, err := r.CommitSignature(id)
	if err != nil {
		return nil, err
	}
	payload, ok, err := r.Store.Get(id)
	if err != nil {
		return nil, fmt.Errorf("verify commit %s: %w", id.Short(), err)
	}
	if !ok {
		return nil, fmt.Errorf("verify commit %s: %w", id.Short(), object.ErrMissingObject)
	}
	key, err := VerifySignature(payload, sig)
	if err != nil {
		return nil, fmt.Errorf("verify commit %s: %w", id.Short(), err)
	}
	return key, nil
}

// VerifySignature checks an encoded signature over payload and returns
// the public key embedded in it.
func VerifySignature(payload []byte, encoded string) (ssh.PublicKey, error) {
	parts := strings.SplitN(strings.TrimSpace(encoded), ":", 4)
	if len(parts) != 4 || parts[0] != sshSignaturePrefix {
		return nil, fmt.Errorf("%w: unknown format", ErrInvalidSignature)
	}
	pubBytes, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: public key: %v", ErrInvalidSignature, err)
	}
	pub, err := ssh.ParsePublicKey(pubBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: public key: %v", ErrInvalidSignature, err)
	}
	blob, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil {
		return nil, fmt.Errorf("%w: signature: %v", ErrInvalidSignature, err)
	}
	if err := pub.Verify(payload, &ssh.Signature{Format: parts[1], Blob: blob}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return pub, nil
}
