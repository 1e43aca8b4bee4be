// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package secrets

import (
	"encoding/base64"

	"github.com/juju/errors"
)

// SecretData holds a secret's content as key values, with the values
// base64 encoded as they are on the wire.
type SecretData = map[string]string

// SecretValue holds the content of a secret revision.
type SecretValue interface {
	// EncodedValues returns the key values of a secret with
	// the values base64 encoded.
	EncodedValues() map[string]string

	// Values returns the key values of a secret with
	// the values decoded.
	Values() (map[string]string, error)

	// KeyValue returns the decoded value of the specified key.
	KeyValue(string) (string, error)

	// IsEmpty checks if the value is empty.
	IsEmpty() bool
}

type secretValue struct {
	// data holds the key values of a secret.
	// All values are base64 encoded.
	data SecretData
}

// NewSecretValue returns a secret using the specified map of values.
// The map values are assumed to be already base64 encoded.
func NewSecretValue(data SecretData) SecretValue {
	return &secretValue{data: data}
}

// NewSecretBytes returns a secret value using the specified map of
// values, which are raw bytes and will be base64 encoded.
func NewSecretBytes(data map[string][]byte) SecretValue {
	dataCopy := make(SecretData, len(data))
	for k, v := range data {
		dataCopy[k] = base64.StdEncoding.EncodeToString(v)
	}
	return &secretValue{data: dataCopy}
}

// EncodedValues implements SecretValue.
func (v secretValue) EncodedValues() map[string]string {
	dataCopy := make(SecretData, len(v.data))
	for k, val := range v.data {
		dataCopy[k] = val
	}
	return dataCopy
}

// Values implements SecretValue.
func (v secretValue) Values() (map[string]string, error) {
	dataCopy := v.EncodedValues()
	for k, val := range dataCopy {
		data, err := base64.StdEncoding.DecodeString(val)
		if err != nil {
			return nil, errors.Trace(err)
		}
		dataCopy[k] = string(data)
	}
	return dataCopy, nil
}

// KeyValue implements SecretValue.
func (v secretValue) KeyValue(key string) (string, error) {
	val, ok := v.data[key]
	if !ok {
		return "", errors.NotFoundf("secret key value %q", key)
	}
	data, err := base64.StdEncoding.DecodeString(val)
	if err != nil {
		return "", errors.Trace(err)
	}
	return string(data), nil
}

// IsEmpty implements SecretValue.
func (v secretValue) IsEmpty() bool {
	return len(v.data) == 0
}
