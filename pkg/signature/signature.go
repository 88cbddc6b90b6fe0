// Package signature authenticates http requests with secp256k1 signatures
// over the request content, in the form of Ethereum personal messages.
package signature

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	HeaderAddress   = "X-Futarchy-Address"
	HeaderTimestamp = "X-Futarchy-Timestamp"
	HeaderSignature = "X-Futarchy-Signature"

	signatureLen = 65
)

var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidKey       = errors.New("invalid private key")
)

// Digest returns the hash signed for a request:
// textHash(keccak256(method \n path \n timestamp \n body)).
func Digest(method, path string, timestamp int64, body []byte) []byte {
	msg := strings.Join([]string{
		strings.ToUpper(method), path, strconv.FormatInt(timestamp, 10), string(body),
	}, "\n")
	return accounts.TextHash(crypto.Keccak256([]byte(msg)))
}

// Signer signs requests on behalf of an address.
type Signer struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// NewSigner returns a signer for the given hex encoded private key, with or
// without 0x prefix.
func NewSigner(privateKeyHex string) (*Signer, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidKey, err)
	}
	return &Signer{key, crypto.PubkeyToAddress(key.PublicKey)}, nil
}

// GenerateSigner returns a signer for a new random key, along with its hex
// encoding.
func GenerateSigner() (*Signer, string, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, "", err
	}
	signer := &Signer{key, crypto.PubkeyToAddress(key.PublicKey)}
	return signer, hexutil.Encode(crypto.FromECDSA(key)), nil
}

func (s *Signer) Address() common.Address {
	return s.address
}

// Sign returns the hex encoded signature (r || s || v, v in {27, 28}) of the
// given request.
func (s *Signer) Sign(
	method, path string, timestamp int64, body []byte,
) (string, error) {
	sig, err := crypto.Sign(Digest(method, path, timestamp, body), s.privateKey)
	if err != nil {
		return "", err
	}
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig), nil
}

// Recover returns the address that signed the given request. Both {0, 1} and
// {27, 28} recovery ids are accepted.
func Recover(
	method, path string, timestamp int64, body []byte, signature string,
) (common.Address, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %s", ErrInvalidSignature, err)
	}
	if len(sig) != signatureLen {
		return common.Address{}, fmt.Errorf(
			"%w: must be %d bytes, got %d", ErrInvalidSignature, signatureLen, len(sig),
		)
	}
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pubkey, err := crypto.SigToPub(Digest(method, path, timestamp, body), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %s", ErrInvalidSignature, err)
	}
	return crypto.PubkeyToAddress(*pubkey), nil
}
