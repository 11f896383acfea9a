package apitest

import "context"

func withUser(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, userKey{}, username)
}

func userFrom(ctx context.Context) string {
	username, _ := ctx.Value(userKey{}).(string)
	return username
}
