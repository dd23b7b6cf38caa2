// Package credentials reads the admin password the operator generates.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

var (
	// ErrSecretNotFound means no secret holds the admin credential
	ErrSecretNotFound = errors.New("admin password secret not found")
	// ErrAmbiguousSecret means the marker search matched more than one secret
	ErrAmbiguousSecret = errors.New("more than one secret matches the admin password marker")
	// ErrKeyMissing means the secret has no entry for the configured key
	ErrKeyMissing = errors.New("admin password key missing from secret")
)

// SecretReader is the slice of the cluster client the reporter needs
type SecretReader interface {
	GetSecret(ctx context.Context, namespace, name string) (*corev1.Secret, error)
	ListSecrets(ctx context.Context, namespace string) (*corev1.SecretList, error)
}

// Lookup says which secret holds the password and under which key
type Lookup struct {
	Namespace string
	// Name is the exact secret name. Ignored when Search is set.
	Name string
	// Search selects the single secret whose name contains Marker, case-insensitively.
	Search bool
	Marker string
	Key    string
}

// Reporter fetches the admin password
type Reporter struct {
	secrets SecretReader
	lookup  Lookup
	log     logrus.FieldLogger
}

// NewReporter creates a Reporter
func NewReporter(secrets SecretReader, lookup Lookup, log logrus.FieldLogger) *Reporter {
	return &Reporter{secrets: secrets, lookup: lookup, log: log}
}

// Password returns the plaintext admin password. Secret data arrives already
// base64-decoded from the API client.
func (r *Reporter) Password(ctx context.Context) (string, error) {
	secret, err := r.secret(ctx)
	if err != nil {
		return "", err
	}

	value, ok := secret.Data[r.lookup.Key]
	if !ok {
		return "", fmt.Errorf("%w: %s/%s has no %q", ErrKeyMissing, secret.Namespace, secret.Name, r.lookup.Key)
	}

	r.log.WithFields(logrus.Fields{"namespace": secret.Namespace, "secret": secret.Name}).Debug("read admin password")
	return string(value), nil
}

func (r *Reporter) secret(ctx context.Context) (*corev1.Secret, error) {
	if !r.lookup.Search {
		secret, err := r.secrets.GetSecret(ctx, r.lookup.Namespace, r.lookup.Name)
		switch {
		case apierrors.IsNotFound(err):
			return nil, fmt.Errorf("%w: %s/%s", ErrSecretNotFound, r.lookup.Namespace, r.lookup.Name)
		case err != nil:
			return nil, fmt.Errorf("failed to get secret %s/%s: %w", r.lookup.Namespace, r.lookup.Name, err)
		}
		return secret, nil
	}

	list, err := r.secrets.ListSecrets(ctx, r.lookup.Namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to list secrets in %s: %w", r.lookup.Namespace, err)
	}

	marker := strings.ToLower(r.lookup.Marker)
	var matches []*corev1.Secret
	for i := range list.Items {
		if strings.Contains(strings.ToLower(list.Items[i].Name), marker) {
			matches = append(matches, &list.Items[i])
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: no secret in %s contains %q", ErrSecretNotFound, r.lookup.Namespace, r.lookup.Marker)
	case 1:
		return matches[0], nil
	default:
		names := make([]string, 0, len(matches))
		for _, s := range matches {
			names = append(names, s.Name)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousSecret, strings.Join(names, ", "))
	}
}
