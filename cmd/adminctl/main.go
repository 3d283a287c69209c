// Command adminctl runs maintenance tasks for the interiors admin backend:
// offline statistics reports and access management.
package main

import (
	"context"
	"io"
	"os"

	"github.com/alecthomas/kong"
)

type cli struct {
	Report      reportCmd      `cmd:"" help:"Compute dashboard statistics from a JSON export of submissions."`
	AllowEmail  allowEmailCmd  `cmd:"" name:"allow-email" help:"Add an address to the dashboard allow-list."`
	RevokeEmail revokeEmailCmd `cmd:"" name:"revoke-email" help:"Remove an address from the allow-list."`
	ListEmails  listEmailsCmd  `cmd:"" name:"list-emails" help:"Print the allow-list."`
	SetPassword setPasswordCmd `cmd:"" name:"set-password" help:"Set the e-mail sign-in password of an admin."`
}

// newParser builds the command parser. Run methods receive ctx as a
// context.Context and out as an io.Writer.
func newParser(ctx context.Context, c *cli, out io.Writer, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("adminctl"),
		kong.Description("Maintenance utility for the interiors admin backend."),
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.BindTo(out, (*io.Writer)(nil)),
	}, options...)
	return kong.New(c, options...)
}

func main() {
	var c cli
	parser, err := newParser(context.Background(), &c, os.Stdout, kong.UsageOnError())
	if err != nil {
		panic(err)
	}
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)
	kctx.FatalIfErrorf(kctx.Run())
}
