package identity

import "context"

// User is a registered identity with its requested attributes
type User struct {
	SubjectID  string
	Attributes map[string]string
}

// Page is one page of the bulk user listing. An empty NextToken means the
// listing is complete.
type Page struct {
	Users     []User
	NextToken string
}

// Provider enumerates registered identities
type Provider interface {
	ListUsers(ctx context.Context, attributes []string, pageSize int32, token string) (*Page, error)
}

// ListAll walks every page of the listing
func ListAll(ctx context.Context, provider Provider, attributes []string, pageSize int32, visit func(User)) error {
	token := ""
	for {
		page, err := provider.ListUsers(ctx, attributes, pageSize, token)
		if err != nil {
			return err
		}
		for _, u := range page.Users {
			visit(u)
		}
		if page.NextToken == "" {
			return nil
		}
		token = page.NextToken
	}
}
