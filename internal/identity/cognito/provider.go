package cognito

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"go.uber.org/zap"

	"github.com/BarkinBalci/click-vote-service/internal/awsclient"
	"github.com/BarkinBalci/click-vote-service/internal/config"
	"github.com/BarkinBalci/click-vote-service/internal/identity"
)

// SubjectAttribute carries the stable subject identifier of a Cognito user
const SubjectAttribute = "sub"

// API is the subset of the Cognito user pool client used by Provider
type API interface {
	ListUsers(ctx context.Context, params *cip.ListUsersInput, optFns ...func(*cip.Options)) (*cip.ListUsersOutput, error)
}

// Provider lists users of a Cognito user pool
type Provider struct {
	api        API
	userPoolID string
	log        *zap.Logger
}

// NewProvider creates a provider for the given user pool
func NewProvider(api API, userPoolID string, log *zap.Logger) *Provider {
	return &Provider{
		api:        api,
		userPoolID: userPoolID,
		log:        log,
	}
}

// NewClient creates a Cognito identity provider client
func NewClient(ctx context.Context, cfg config.Cognito, log *zap.Logger) (*cip.Client, error) {
	awsCfg, err := awsclient.LoadConfig(ctx, cfg.Region, cfg.Endpoint, log)
	if err != nil {
		return nil, err
	}

	var clientOpts []func(*cip.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *cip.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	log.Info("Cognito client created",
		zap.String("region", cfg.Region),
		zap.String("user_pool_id", cfg.UserPoolID))

	return cip.NewFromConfig(awsCfg, clientOpts...), nil
}

// ListUsers returns one page of users keyed by their "sub" attribute. Users
// without a subject attribute are skipped.
func (p *Provider) ListUsers(ctx context.Context, attributes []string, pageSize int32, token string) (*identity.Page, error) {
	input := &cip.ListUsersInput{
		UserPoolId:      aws.String(p.userPoolID),
		AttributesToGet: withSubject(attributes),
	}
	if pageSize > 0 {
		input.Limit = aws.Int32(pageSize)
	}
	if token != "" {
		input.PaginationToken = aws.String(token)
	}

	out, err := p.api.ListUsers(ctx, input)
	if err != nil {
		p.log.Warn("Failed to list Cognito users", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	page := &identity.Page{
		Users:     make([]identity.User, 0, len(out.Users)),
		NextToken: aws.ToString(out.PaginationToken),
	}

	for _, u := range out.Users {
		attrs := make(map[string]string, len(u.Attributes))
		for _, a := range u.Attributes {
			attrs[aws.ToString(a.Name)] = aws.ToString(a.Value)
		}
		sub := attrs[SubjectAttribute]
		if sub == "" {
			continue
		}
		page.Users = append(page.Users, identity.User{SubjectID: sub, Attributes: attrs})
	}

	return page, nil
}

func withSubject(attributes []string) []string {
	for _, a := range attributes {
		if a == SubjectAttribute {
			return attributes
		}
	}
	return append(append([]string{}, attributes...), SubjectAttribute)
}
