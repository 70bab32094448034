// Package fakes provides in-memory stand-ins for the AWS clients and
// the store's fetch sources, with error injection and call counting.
package fakes

import (
	"context"
	"strconv"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"

	"github.com/systmms/remoteconfig/internal/fetch"
)

// ParameterPage is one page of a scripted GetParametersByPath sequence.
type ParameterPage struct {
	Parameters []ssmtypes.Parameter
	NextToken  *string
}

// FakeSSMClient replays a fixed page sequence for GetParametersByPath.
// Pages are served in order; the token the caller sends back is checked
// against the token the previous page advertised.
type FakeSSMClient struct {
	Pages []ParameterPage
	// Errs[i] aborts the fetch on request i (zero-based), taking
	// priority over Pages[i].
	Errs map[int]error
	// GetParametersByPathFunc allows custom behavior
	GetParametersByPathFunc func(ctx context.Context, params *ssm.GetParametersByPathInput) (*ssm.GetParametersByPathOutput, error)

	mu    sync.Mutex
	calls int
	// Inputs records every request for assertions.
	Inputs []*ssm.GetParametersByPathInput
}

// NewFakeSSMClient creates a fake client serving the given pages.
func NewFakeSSMClient(pages ...ParameterPage) *FakeSSMClient {
	return &FakeSSMClient{
		Pages: pages,
		Errs:  make(map[int]error),
	}
}

// AddPage appends a page of parameters; token links are wired up so
// every page except the last advertises a continuation token.
func (f *FakeSSMClient) AddPage(params ...ssmtypes.Parameter) {
	if n := len(f.Pages); n > 0 {
		token := tokenFor(n)
		f.Pages[n-1].NextToken = &token
	}
	f.Pages = append(f.Pages, ParameterPage{Parameters: params})
}

// FailOnCall makes request number n (zero-based) return err.
func (f *FakeSSMClient) FailOnCall(n int, err error) {
	f.Errs[n] = err
}

// Calls returns the number of GetParametersByPath requests served.
func (f *FakeSSMClient) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// GetParametersByPath mocks the paginated listing operation.
func (f *FakeSSMClient) GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error) {
	f.mu.Lock()
	call := f.calls
	f.calls++
	f.Inputs = append(f.Inputs, params)
	f.mu.Unlock()

	if f.GetParametersByPathFunc != nil {
		return f.GetParametersByPathFunc(ctx, params)
	}

	if err, ok := f.Errs[call]; ok {
		return nil, err
	}

	if call >= len(f.Pages) {
		return &ssm.GetParametersByPathOutput{}, nil
	}

	page := f.Pages[call]
	return &ssm.GetParametersByPathOutput{
		Parameters: page.Parameters,
		NextToken:  page.NextToken,
	}, nil
}

func tokenFor(page int) string {
	return "token-" + strconv.Itoa(page)
}

// StringParameter builds an SSM parameter for test pages.
func StringParameter(name, value string) ssmtypes.Parameter {
	return ssmtypes.Parameter{
		Name:  aws.String(name),
		Value: aws.String(value),
		Type:  ssmtypes.ParameterTypeString,
	}
}

// FakeSecretsManagerClient is a mock Secrets Manager client keyed by
// secret name.
type FakeSecretsManagerClient struct {
	// Secrets maps secret names to their string payloads.
	Secrets map[string]string
	// Binaries maps secret names to binary payloads.
	Binaries map[string][]byte
	// Empty lists names that resolve with neither string nor binary.
	Empty map[string]bool
	// Errors maps secret names to errors to return.
	Errors map[string]error
	// GetSecretValueFunc allows custom behavior
	GetSecretValueFunc func(ctx context.Context, params *secretsmanager.GetSecretValueInput) (*secretsmanager.GetSecretValueOutput, error)

	mu    sync.Mutex
	calls int
}

// NewFakeSecretsManagerClient creates an empty fake client.
func NewFakeSecretsManagerClient() *FakeSecretsManagerClient {
	return &FakeSecretsManagerClient{
		Secrets:  make(map[string]string),
		Binaries: make(map[string][]byte),
		Empty:    make(map[string]bool),
		Errors:   make(map[string]error),
	}
}

// AddSecretString adds a string secret to the fake client.
func (f *FakeSecretsManagerClient) AddSecretString(name, value string) {
	f.Secrets[name] = value
}

// AddSecretBinary adds a binary secret to the fake client.
func (f *FakeSecretsManagerClient) AddSecretBinary(name string, value []byte) {
	f.Binaries[name] = value
}

// AddEmptySecret adds a secret that carries no value at all.
func (f *FakeSecretsManagerClient) AddEmptySecret(name string) {
	f.Empty[name] = true
}

// AddError configures the fake to return an error for a specific secret.
func (f *FakeSecretsManagerClient) AddError(name string, err error) {
	f.Errors[name] = err
}

// Calls returns the number of GetSecretValue requests served.
func (f *FakeSecretsManagerClient) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// GetSecretValue mocks the GetSecretValue operation.
func (f *FakeSecretsManagerClient) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.GetSecretValueFunc != nil {
		return f.GetSecretValueFunc(ctx, params)
	}

	name := aws.ToString(params.SecretId)

	if err, ok := f.Errors[name]; ok {
		return nil, err
	}
	if f.Empty[name] {
		return &secretsmanager.GetSecretValueOutput{Name: aws.String(name)}, nil
	}
	if value, ok := f.Secrets[name]; ok {
		return &secretsmanager.GetSecretValueOutput{
			Name:         aws.String(name),
			SecretString: aws.String(value),
		}, nil
	}
	if value, ok := f.Binaries[name]; ok {
		return &secretsmanager.GetSecretValueOutput{
			Name:         aws.String(name),
			SecretBinary: value,
		}, nil
	}

	return nil, &notFoundError{name: name}
}

type notFoundError struct {
	name string
}

func (e *notFoundError) Error() string {
	return "ResourceNotFoundException: Secrets Manager can't find the specified secret: " + e.name
}

// FakeParameterSource implements the store's ParameterSource with a
// canned result, for facade tests that bypass the AWS layer.
type FakeParameterSource struct {
	Parameters []fetch.Parameter
	Err        error

	mu    sync.Mutex
	calls int
}

// Fetch returns the canned parameters or error.
func (f *FakeParameterSource) Fetch(ctx context.Context, path string, continueOnError bool) ([]fetch.Parameter, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}
	return append([]fetch.Parameter(nil), f.Parameters...), nil
}

// Calls returns the number of Fetch invocations.
func (f *FakeParameterSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// FakeSecretSource implements the store's SecretSource with a canned
// result.
type FakeSecretSource struct {
	Secrets map[string]string
	Err     error

	mu    sync.Mutex
	calls int
}

// Fetch returns the canned secrets or error.
func (f *FakeSecretSource) Fetch(ctx context.Context, names []string, continueOnError bool) (map[string]string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}
	out := make(map[string]string, len(f.Secrets))
	for k, v := range f.Secrets {
		out[k] = v
	}
	return out, nil
}

// Calls returns the number of Fetch invocations.
func (f *FakeSecretSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
