// Package normalize holds the pure helpers shared by the parameter and
// secret pipelines: boolean coercion, input validation, sensitive-key
// masking, store error classification, and secret payload parsing.
package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"

	rcerrors "github.com/systmms/remoteconfig/internal/errors"
	"github.com/systmms/remoteconfig/internal/logging"
)

// ParseBool coerces a loosely typed configuration flag to a bool.
// Only boolean true and the string "true" (case-insensitive) count as
// true; every other value, including 1 and "1", is false.
func ParseBool(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	default:
		return false
	}
}

// ValidatePathQuery checks the region/path pair used for a parameter
// store query. It never panics; all failures are ValidationError.
func ValidatePathQuery(region, path string) error {
	if strings.TrimSpace(region) == "" {
		return rcerrors.ValidationError{
			Field:      "region",
			Message:    "region must not be empty",
			Suggestion: "Set the AWS region, e.g. 'us-east-1'",
		}
	}
	if strings.TrimSpace(path) == "" {
		return rcerrors.ValidationError{
			Field:      "path",
			Message:    "parameter path must not be empty",
			Suggestion: "Provide the base path to load, e.g. '/myapp/production'",
		}
	}
	if !strings.HasPrefix(path, "/") {
		return rcerrors.ValidationError{
			Field:      "path",
			Message:    "parameter path must start with '/'",
			Suggestion: "SSM parameter hierarchies are absolute; use '/" + path + "'",
		}
	}
	return nil
}

// sensitiveKeywords flags keys whose values must never be logged.
var sensitiveKeywords = []string{
	"password", "passwd", "pwd", "secret", "key", "token", "auth",
	"credential", "api_key", "apikey", "access_key", "private", "salt",
}

// ShouldMask reports whether the key names a sensitive value.
func ShouldMask(key string) bool {
	lower := strings.ToLower(key)
	for _, kw := range sensitiveKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// MaskValue returns the mask token when the key is sensitive, the
// value unchanged otherwise.
func MaskValue(value, key string) string {
	if ShouldMask(key) {
		return logging.MaskToken
	}
	return value
}

// ClassifyParameterError maps a parameter store failure to a
// human-actionable message embedding region, path, and a remediation
// hint. Unrecognized errors fall through to a generic message carrying
// the underlying error text.
func ClassifyParameterError(err error, region, path string) string {
	detail := errText(err)
	lower := strings.ToLower(detail)

	var notFound *ssmtypes.ParameterNotFound

	switch {
	case errors.As(err, &notFound) || strings.Contains(lower, "parameternotfound"):
		return "No parameters found under path '" + path + "' in region " + region +
			". Verify the path and that parameters exist. SSM parameter names are case-sensitive."
	case strings.Contains(lower, "accessdenied") || strings.Contains(lower, "unauthorized") || strings.Contains(lower, "forbidden"):
		return "Access denied reading parameters under '" + path + "' in region " + region +
			". Check IAM permissions: ssm:GetParametersByPath and kms:Decrypt for SecureString values."
	case strings.Contains(lower, "invalidparameter") || strings.Contains(lower, "validationexception"):
		return "Invalid parameter request for path '" + path + "' in region " + region +
			". Check the path format and request options. Details: " + detail
	case strings.Contains(lower, "throttl") || strings.Contains(lower, "rate exceeded") || strings.Contains(lower, "too many requests"):
		return "Request throttled while reading parameters under '" + path + "' in region " + region +
			". Reduce request rate or add backoff before retrying."
	case strings.Contains(lower, "no such host") || strings.Contains(lower, "connection refused") ||
		strings.Contains(lower, "network is unreachable") || strings.Contains(lower, "dial tcp"):
		return "Unable to reach the SSM endpoint in region " + region +
			" while reading '" + path + "'. Check network connectivity and the region name."
	case strings.Contains(lower, "credential") || strings.Contains(lower, "no valid providers") ||
		strings.Contains(lower, "failed to retrieve credentials"):
		return "Missing or invalid AWS credentials while reading parameters under '" + path + "' in region " + region +
			". Configure credentials via environment, shared config, or an instance role."
	default:
		return "Failed to fetch parameters under '" + path + "' in region " + region + ": " + detail
	}
}

// ClassifySecretError maps a secret store failure to a human-actionable
// message embedding region, secret name, and a remediation hint.
func ClassifySecretError(err error, region, secretName string) string {
	detail := errText(err)
	lower := strings.ToLower(detail)

	var notFound *smtypes.ResourceNotFoundException
	var invalidParam *smtypes.InvalidParameterException
	var invalidReq *smtypes.InvalidRequestException
	var decryption *smtypes.DecryptionFailure

	switch {
	case errors.As(err, &notFound) || strings.Contains(lower, "resourcenotfound"):
		return "Secret '" + secretName + "' not found in region " + region +
			". Verify the secret name and region. List secrets with 'aws secretsmanager list-secrets'."
	case strings.Contains(lower, "accessdenied") || strings.Contains(lower, "unauthorized") || strings.Contains(lower, "forbidden"):
		return "Access denied reading secret '" + secretName + "' in region " + region +
			". Check IAM permissions: secretsmanager:GetSecretValue and kms:Decrypt."
	case errors.As(err, &invalidParam) || strings.Contains(lower, "invalidparameter"):
		return "Invalid parameter in request for secret '" + secretName + "' in region " + region +
			". Details: " + detail
	case errors.As(err, &invalidReq) || strings.Contains(lower, "invalidrequest"):
		return "Invalid request for secret '" + secretName + "' in region " + region +
			". The secret may be scheduled for deletion. Details: " + detail
	case errors.As(err, &decryption) || strings.Contains(lower, "decryptionfailure"):
		return "Failed to decrypt secret '" + secretName + "' in region " + region +
			". The KMS key may be disabled or you lack kms:Decrypt permission."
	case strings.Contains(lower, "no such host") || strings.Contains(lower, "connection refused") ||
		strings.Contains(lower, "network is unreachable") || strings.Contains(lower, "dial tcp"):
		return "Unable to reach the Secrets Manager endpoint in region " + region +
			" while reading '" + secretName + "'. Check network connectivity and the region name."
	case strings.Contains(lower, "credential") || strings.Contains(lower, "no valid providers") ||
		strings.Contains(lower, "failed to retrieve credentials"):
		return "Missing or invalid AWS credentials while reading secret '" + secretName + "' in region " + region +
			". Configure credentials via environment, shared config, or an instance role."
	default:
		return "Failed to fetch secret '" + secretName + "' in region " + region + ": " + detail
	}
}

func errText(err error) string {
	if err == nil || err.Error() == "" {
		return "Unknown error occurred"
	}
	return err.Error()
}

// PayloadKind discriminates the two shapes a secret payload can take.
type PayloadKind int

const (
	// ObjectPayload is a JSON object flattened to a string map.
	ObjectPayload PayloadKind = iota
	// ScalarPayload is a single string value.
	ScalarPayload
)

// Payload is the tagged result of parsing one secret string.
type Payload struct {
	Kind   PayloadKind
	Object map[string]string
	Scalar string
}

// ParseSecretPayload resolves the shape of a raw secret string.
// A JSON object becomes an ObjectPayload with each top-level field
// stringified. A JSON primitive or array becomes a ScalarPayload with
// the stringified value. Anything that fails to parse is treated as
// plain text.
func ParseSecretPayload(raw, secretName string) Payload {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var parsed interface{}
	if err := dec.Decode(&parsed); err != nil || dec.More() {
		return Payload{Kind: ScalarPayload, Scalar: raw}
	}

	obj, ok := parsed.(map[string]interface{})
	if !ok {
		return Payload{Kind: ScalarPayload, Scalar: stringifyJSON(parsed)}
	}

	flat := make(map[string]string, len(obj))
	for k, v := range obj {
		flat[k] = stringifyJSON(v)
	}
	return Payload{Kind: ObjectPayload, Object: flat}
}

// stringifyJSON renders a decoded JSON value the way it reads in
// configuration: strings unquoted, numbers in their literal form,
// composites re-marshaled.
func stringifyJSON(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		if val {
			return "true"
		}
		return "false"
	case nil:
		return "null"
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(val); err != nil {
			return ""
		}
		return strings.TrimSuffix(buf.String(), "\n")
	}
}
