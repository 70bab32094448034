package fetch_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rcerrors "github.com/systmms/remoteconfig/internal/errors"
	"github.com/systmms/remoteconfig/internal/fetch"
	"github.com/systmms/remoteconfig/tests/fakes"
	"github.com/systmms/remoteconfig/tests/testutil"
)

func newParameterFetcher(t *testing.T, region string, client *fakes.FakeSSMClient, opts ...fetch.ParameterFetcherOption) *fetch.ParameterFetcher {
	t.Helper()

	opts = append([]fetch.ParameterFetcherOption{fetch.WithSSMClient(client)}, opts...)
	f, err := fetch.NewParameterFetcher(region, opts...)
	require.NoError(t, err)
	return f
}

func TestFetchParametersPagination(t *testing.T) {
	t.Parallel()

	client := fakes.NewFakeSSMClient()
	client.AddPage(
		fakes.StringParameter("/myapp/database/host", "localhost"),
		fakes.StringParameter("/myapp/database/port", "5432"),
	)
	client.AddPage(
		fakes.StringParameter("/myapp/cache/host", "redis"),
		fakes.StringParameter("/myapp/cache/port", "6379"),
	)
	client.AddPage(
		fakes.StringParameter("/myapp/log_level", "info"),
	)

	f := newParameterFetcher(t, "us-east-1", client)
	params, err := f.Fetch(context.Background(), "/myapp", false)
	require.NoError(t, err)

	// 3 pages of sizes [2,2,1]: 5 items returned, 3 requests made,
	// server page order preserved.
	assert.Equal(t, 3, client.Calls())
	require.Len(t, params, 5)
	assert.Equal(t, "/myapp/database/host", params[0].Name)
	assert.Equal(t, "localhost", params[0].Value)
	assert.Equal(t, "/myapp/log_level", params[4].Name)
}

func TestFetchParametersRequestShape(t *testing.T) {
	t.Parallel()

	client := fakes.NewFakeSSMClient()
	client.AddPage(fakes.StringParameter("/myapp/a", "1"))
	client.AddPage(fakes.StringParameter("/myapp/b", "2"))

	f := newParameterFetcher(t, "us-east-1", client)
	_, err := f.Fetch(context.Background(), "/myapp", false)
	require.NoError(t, err)

	require.Len(t, client.Inputs, 2)
	first := client.Inputs[0]
	assert.Equal(t, "/myapp", aws.ToString(first.Path))
	assert.True(t, aws.ToBool(first.Recursive))
	assert.True(t, aws.ToBool(first.WithDecryption))
	assert.Nil(t, first.NextToken)

	// The second request carries the token the first page advertised.
	assert.Equal(t, "token-1", aws.ToString(client.Inputs[1].NextToken))
}

func TestFetchParametersSinglePage(t *testing.T) {
	t.Parallel()

	client := fakes.NewFakeSSMClient()
	client.AddPage(fakes.StringParameter("/myapp/only", "one"))

	f := newParameterFetcher(t, "us-east-1", client)
	params, err := f.Fetch(context.Background(), "/myapp", false)
	require.NoError(t, err)
	assert.Len(t, params, 1)
	assert.Equal(t, 1, client.Calls())
}

func TestFetchParametersEmptyResult(t *testing.T) {
	t.Parallel()

	client := fakes.NewFakeSSMClient()

	f := newParameterFetcher(t, "us-east-1", client)
	params, err := f.Fetch(context.Background(), "/nothing/here", false)
	require.NoError(t, err)
	assert.Empty(t, params)
	assert.Equal(t, 1, client.Calls())
}

func TestFetchParametersValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		region string
		path   string
	}{
		{"empty region", "", "/myapp"},
		{"empty path", "us-east-1", ""},
		{"relative path", "us-east-1", "myapp/config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := fakes.NewFakeSSMClient()
			f := newParameterFetcher(t, tt.region, client)

			// Propagation mode surfaces the validation failure.
			_, err := f.Fetch(context.Background(), tt.path, false)
			require.Error(t, err)
			assert.True(t, rcerrors.IsValidation(err))

			// Continue mode swallows it into an empty result.
			params, err := f.Fetch(context.Background(), tt.path, true)
			require.NoError(t, err)
			assert.Empty(t, params)

			// Validation always happens before any network call.
			assert.Equal(t, 0, client.Calls())
		})
	}
}

func TestFetchParametersFailureMidPagination(t *testing.T) {
	t.Parallel()

	newClient := func() *fakes.FakeSSMClient {
		client := fakes.NewFakeSSMClient()
		client.AddPage(fakes.StringParameter("/myapp/a", "1"))
		client.AddPage(fakes.StringParameter("/myapp/b", "2"))
		client.FailOnCall(1, errors.New("ThrottlingException: Rate exceeded"))
		return client
	}

	t.Run("propagates classified failure", func(t *testing.T) {
		f := newParameterFetcher(t, "us-east-1", newClient())
		_, err := f.Fetch(context.Background(), "/myapp", false)
		require.Error(t, err)
		assert.True(t, rcerrors.IsFetch(err))
		assert.Contains(t, err.Error(), "throttled")
		assert.Contains(t, err.Error(), "/myapp")
		assert.Contains(t, err.Error(), "us-east-1")
	})

	t.Run("continue mode resets to empty", func(t *testing.T) {
		logger := testutil.NewBufferLogger(t)
		f := newParameterFetcher(t, "us-east-1", newClient(), fetch.WithParameterLogger(logger.Logger))

		params, err := f.Fetch(context.Background(), "/myapp", true)
		require.NoError(t, err)
		// Full reset: the already-collected first page is discarded so
		// callers never observe a partial listing.
		assert.Empty(t, params)
		logger.AssertContains(t, "throttled")
	})
}

func TestFetchParametersMaxPages(t *testing.T) {
	t.Parallel()

	client := fakes.NewFakeSSMClient()
	client.AddPage(fakes.StringParameter("/myapp/a", "1"))
	client.AddPage(fakes.StringParameter("/myapp/b", "2"))
	client.AddPage(fakes.StringParameter("/myapp/c", "3"))

	f := newParameterFetcher(t, "us-east-1", client, fetch.WithMaxPages(2))
	_, err := f.Fetch(context.Background(), "/myapp", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pagination exceeded 2 pages")
	assert.Equal(t, 2, client.Calls())
}

func TestFetchParametersUnlimitedPagesByDefault(t *testing.T) {
	t.Parallel()

	client := fakes.NewFakeSSMClient()
	for i := 0; i < 25; i++ {
		client.AddPage(fakes.StringParameter("/myapp/item", "v"))
	}

	f := newParameterFetcher(t, "us-east-1", client)
	params, err := f.Fetch(context.Background(), "/myapp", false)
	require.NoError(t, err)
	assert.Len(t, params, 25)
	assert.Equal(t, 25, client.Calls())
}
