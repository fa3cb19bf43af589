package manifest

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/vango-dev/viewrouter/internal/errors"
)

const s3Scheme = "s3://"

// S3Client is the subset of the S3 API used to fetch manifests.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	s3Client        S3Client
	region          string
	endpoint        string
	usePathStyle    bool
	accessKeyID     string
	secretKey       string
	httpClient      *http.Client
	s3ConfigOptions []func(*config.LoadOptions) error
}

// WithS3Client sets a pre-configured S3 client. Useful for testing with
// mocks.
func WithS3Client(c S3Client) LoadOption {
	return func(o *loadOptions) {
		o.s3Client = c
	}
}

// WithRegion sets the AWS region used for s3:// sources.
func WithRegion(region string) LoadOption {
	return func(o *loadOptions) {
		o.region = region
	}
}

// WithEndpoint points s3:// sources at an S3-compatible service. Path
// style addressing is used when pathStyle is set, as MinIO requires.
func WithEndpoint(endpoint string, pathStyle bool) LoadOption {
	return func(o *loadOptions) {
		o.endpoint = endpoint
		o.usePathStyle = pathStyle
	}
}

// WithCredentials sets static credentials for s3:// sources.
func WithCredentials(accessKeyID, secretKey string) LoadOption {
	return func(o *loadOptions) {
		o.accessKeyID = accessKeyID
		o.secretKey = secretKey
	}
}

// WithHTTPClient sets the HTTP client used by the S3 client.
func WithHTTPClient(c *http.Client) LoadOption {
	return func(o *loadOptions) {
		o.httpClient = c
	}
}

// WithS3ConfigOption adds a custom AWS config option.
func WithS3ConfigOption(opt func(*config.LoadOptions) error) LoadOption {
	return func(o *loadOptions) {
		o.s3ConfigOptions = append(o.s3ConfigOptions, opt)
	}
}

// Load reads and parses the manifest at source, which is either a local
// file path or an s3://bucket/key URL. The format follows the extension.
func Load(ctx context.Context, source string, opts ...LoadOption) (*Manifest, error) {
	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(source, s3Scheme) {
		data, err = readS3(ctx, source, opts)
	} else {
		data, err = readFile(source)
	}
	if err != nil {
		return nil, err
	}
	return Parse(data, FormatOf(source))
}

func readFile(name string) ([]byte, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		e := errors.New("M003").WithDetail(name).Wrap(err)
		if os.IsNotExist(err) {
			e = e.WithSuggestion("Check the manifest path")
		}
		return nil, e
	}
	return data, nil
}

// splitS3 splits s3://bucket/key into its parts.
func splitS3(source string) (bucket, key string, ok bool) {
	rest := strings.TrimPrefix(source, s3Scheme)
	bucket, key, found := strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

func readS3(ctx context.Context, source string, opts []LoadOption) ([]byte, error) {
	bucket, key, ok := splitS3(source)
	if !ok {
		return nil, errors.New("M003").WithDetailf("invalid S3 location %q", source).
			WithSuggestion("Use s3://bucket/key")
	}

	options := &loadOptions{}
	for _, opt := range opts {
		opt(options)
	}

	client, err := newS3Client(ctx, options)
	if err != nil {
		return nil, errors.New("M003").WithDetail("load AWS config").Wrap(err)
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, classifyS3Error(err, source)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.New("M003").WithDetail(source).Wrap(err)
	}
	return data, nil
}

func newS3Client(ctx context.Context, o *loadOptions) (S3Client, error) {
	if o.s3Client != nil {
		return o.s3Client, nil
	}

	var awsOptions []func(*config.LoadOptions) error
	if o.region != "" {
		awsOptions = append(awsOptions, config.WithRegion(o.region))
	}
	if o.accessKeyID != "" && o.secretKey != "" {
		awsOptions = append(awsOptions, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.accessKeyID, o.secretKey, ""),
		))
	}
	if o.httpClient != nil {
		awsOptions = append(awsOptions, config.WithHTTPClient(o.httpClient))
	}
	awsOptions = append(awsOptions, o.s3ConfigOptions...)

	cfg, err := config.LoadDefaultConfig(ctx, awsOptions...)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.endpoint != "" {
			so.BaseEndpoint = aws.String(o.endpoint)
		}
		so.UsePathStyle = o.usePathStyle
	}), nil
}

func classifyS3Error(err error, source string) error {
	e := errors.New("M003").WithDetail(source).Wrap(err)

	var nsk *types.NoSuchKey
	if stderrors.As(err, &nsk) {
		return e.WithSuggestion("The object does not exist")
	}
	var nsb *types.NoSuchBucket
	if stderrors.As(err, &nsb) {
		return e.WithSuggestion("The bucket does not exist")
	}

	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied":
			return e.WithSuggestion("Check the credentials and bucket policy")
		case "SlowDown", "ServiceUnavailable":
			return e.WithSuggestion("The service is unavailable, retry later")
		}
		return e.WithDetailf("%s: %s", source, apiErr.ErrorCode())
	}
	return e
}
