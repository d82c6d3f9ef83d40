package awsx

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
)

// signingService is the service name the Selling Partner API expects in
// the SigV4 scope.
const signingService = "execute-api"

// RequestSigner signs outbound Selling Partner API requests with SigV4.
// The credential source (ambient vs. assumed role) is decided once in
// LoadAWSConfig; the signer is oblivious to it.
type RequestSigner struct {
	creds   sdkaws.CredentialsProvider
	signer  *v4.Signer
	region  string
	nowFunc func() time.Time
}

// NewRequestSigner returns a signer bound to the config's credentials
// and region.
func NewRequestSigner(cfg sdkaws.Config) *RequestSigner {
	return &RequestSigner{
		creds:   cfg.Credentials,
		signer:  v4.NewSigner(),
		region:  cfg.Region,
		nowFunc: time.Now,
	}
}

// Sign adds SigV4 authorization headers to req. body must be the exact
// request payload (nil for empty-bodied requests).
func (s *RequestSigner) Sign(ctx context.Context, req *http.Request, body []byte) error {
	creds, err := s.creds.Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("retrieve credentials: %w", err)
	}

	sum := sha256.Sum256(body)
	payloadHash := hex.EncodeToString(sum[:])

	if err := s.signer.SignHTTP(ctx, creds, req, payloadHash, signingService, s.region, s.nowFunc().UTC()); err != nil {
		return fmt.Errorf("sign request: %w", err)
	}
	return nil
}
