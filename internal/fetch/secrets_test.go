package fetch_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rcerrors "github.com/systmms/remoteconfig/internal/errors"
	"github.com/systmms/remoteconfig/internal/fetch"
	"github.com/systmms/remoteconfig/tests/fakes"
	"github.com/systmms/remoteconfig/tests/testutil"
)

func newSecretFetcher(t *testing.T, region string, client *fakes.FakeSecretsManagerClient, opts ...fetch.SecretFetcherOption) *fetch.SecretFetcher {
	t.Helper()

	opts = append([]fetch.SecretFetcherOption{fetch.WithSecretsManagerClient(client)}, opts...)
	f, err := fetch.NewSecretFetcher(region, opts...)
	require.NoError(t, err)
	return f
}

func TestFetchSecrets(t *testing.T) {
	t.Parallel()

	client := fakes.NewFakeSecretsManagerClient()
	client.AddSecretString("db-credentials", `{"user":"admin"}`)
	client.AddSecretString("api-token", "tok-123")
	client.AddSecretBinary("tls-cert", []byte("-----BEGIN CERT-----"))

	f := newSecretFetcher(t, "us-east-1", client)
	secrets, err := f.Fetch(context.Background(), []string{"db-credentials", "api-token", "tls-cert"}, false)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"db-credentials": `{"user":"admin"}`,
		"api-token":      "tok-123",
		"tls-cert":       "-----BEGIN CERT-----",
	}, secrets)
	assert.Equal(t, 3, client.Calls())
}

func TestFetchSecretsEmptyNames(t *testing.T) {
	t.Parallel()

	client := fakes.NewFakeSecretsManagerClient()
	f := newSecretFetcher(t, "us-east-1", client)

	// Empty and nil name lists are not failure conditions, regardless
	// of the continue-on-error policy.
	for _, continueOnError := range []bool{true, false} {
		secrets, err := f.Fetch(context.Background(), nil, continueOnError)
		require.NoError(t, err)
		assert.Empty(t, secrets)

		secrets, err = f.Fetch(context.Background(), []string{}, continueOnError)
		require.NoError(t, err)
		assert.Empty(t, secrets)
	}

	assert.Equal(t, 0, client.Calls())
}

func TestFetchSecretsEmptyRegion(t *testing.T) {
	t.Parallel()

	client := fakes.NewFakeSecretsManagerClient()
	client.AddSecretString("a", "1")
	f := newSecretFetcher(t, "  ", client)

	_, err := f.Fetch(context.Background(), []string{"a"}, false)
	require.Error(t, err)
	assert.True(t, rcerrors.IsValidation(err))

	secrets, err := f.Fetch(context.Background(), []string{"a"}, true)
	require.NoError(t, err)
	assert.Empty(t, secrets)

	assert.Equal(t, 0, client.Calls())
}

func TestFetchSecretsBlankName(t *testing.T) {
	t.Parallel()

	client := fakes.NewFakeSecretsManagerClient()
	client.AddSecretString("a", "1")
	f := newSecretFetcher(t, "us-east-1", client)

	_, err := f.Fetch(context.Background(), []string{"a", "  "}, false)
	require.Error(t, err)
	assert.True(t, rcerrors.IsValidation(err))

	secrets, err := f.Fetch(context.Background(), []string{"a", ""}, true)
	require.NoError(t, err)
	assert.Empty(t, secrets)

	// Name validation happens before any request goes out.
	assert.Equal(t, 0, client.Calls())
}

func TestFetchSecretsPartialFailure(t *testing.T) {
	t.Parallel()

	client := fakes.NewFakeSecretsManagerClient()
	client.AddSecretString("first", "1")
	client.AddError("second", errors.New("AccessDeniedException: not authorized"))
	client.AddSecretString("third", "3")

	t.Run("continue mode skips the failure", func(t *testing.T) {
		logger := testutil.NewBufferLogger(t)
		f := newSecretFetcher(t, "us-east-1", client, fetch.WithSecretLogger(logger.Logger))

		secrets, err := f.Fetch(context.Background(), []string{"first", "second", "third"}, true)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"first": "1", "third": "3"}, secrets)
		logger.AssertContains(t, "second")
	})

	t.Run("propagation mode fails with classified message", func(t *testing.T) {
		f := newSecretFetcher(t, "us-east-1", client)

		_, err := f.Fetch(context.Background(), []string{"first", "second", "third"}, false)
		require.Error(t, err)
		assert.True(t, rcerrors.IsFetch(err))
		assert.Contains(t, err.Error(), "second")
		assert.Contains(t, err.Error(), "Access denied")
	})
}

func TestFetchSecretsFailFastIsDeterministic(t *testing.T) {
	t.Parallel()

	// Both fetches fail; the propagated failure is always the first in
	// input order, independent of completion timing.
	client := fakes.NewFakeSecretsManagerClient()
	client.AddError("alpha", errors.New("alpha exploded"))
	client.AddError("beta", errors.New("beta exploded"))

	f := newSecretFetcher(t, "us-east-1", client)
	for i := 0; i < 5; i++ {
		_, err := f.Fetch(context.Background(), []string{"alpha", "beta"}, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "alpha")
	}
}

func TestFetchSecretsNoValue(t *testing.T) {
	t.Parallel()

	client := fakes.NewFakeSecretsManagerClient()
	client.AddEmptySecret("hollow")
	client.AddSecretString("solid", "ok")

	f := newSecretFetcher(t, "us-east-1", client)

	_, err := f.Fetch(context.Background(), []string{"hollow"}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no value")

	secrets, err := f.Fetch(context.Background(), []string{"hollow", "solid"}, true)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"solid": "ok"}, secrets)
}

func TestFetchSecretsAllFailDegradedNotFatal(t *testing.T) {
	t.Parallel()

	client := fakes.NewFakeSecretsManagerClient()
	client.AddError("a", errors.New("boom"))
	client.AddError("b", errors.New("boom"))

	logger := testutil.NewBufferLogger(t)
	f := newSecretFetcher(t, "us-east-1", client, fetch.WithSecretLogger(logger.Logger))

	secrets, err := f.Fetch(context.Background(), []string{"a", "b"}, true)
	require.NoError(t, err)
	assert.Empty(t, secrets)
	logger.AssertContains(t, "All 2 secret fetches failed")
}

func TestFetchSecretsConcurrent(t *testing.T) {
	t.Parallel()

	// Block every request until all are in flight, proving the fetcher
	// issues requests concurrently instead of one at a time.
	const n = 5

	var mu sync.Mutex
	inFlight := 0
	allStarted := make(chan struct{})

	client := fakes.NewFakeSecretsManagerClient()
	client.GetSecretValueFunc = func(ctx context.Context, params *secretsmanager.GetSecretValueInput) (*secretsmanager.GetSecretValueOutput, error) {
		mu.Lock()
		inFlight++
		if inFlight == n {
			close(allStarted)
		}
		mu.Unlock()

		<-allStarted
		return &secretsmanager.GetSecretValueOutput{
			Name:         params.SecretId,
			SecretString: aws.String("v-" + aws.ToString(params.SecretId)),
		}, nil
	}

	f := newSecretFetcher(t, "us-east-1", client, fetch.WithMaxConcurrent(n))

	names := []string{"s1", "s2", "s3", "s4", "s5"}
	secrets, err := f.Fetch(context.Background(), names, false)
	require.NoError(t, err)
	require.Len(t, secrets, n)
	for _, name := range names {
		assert.Equal(t, "v-"+name, secrets[name])
	}
}
