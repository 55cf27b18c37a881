// Package args turns the text of a chat message into typed command arguments.
//
// The pipeline has four parts. Tokenize splits text into tokens, honouring
// quotes and a backslash escape. A Signature, built once per command with
// Builder, declares the parameters and their types. A Registry maps declared
// types to Converters: primitives, framework entities looked up through an
// injected EntityResolver, and custom converters. A Binder walks the tokens
// against the signature and returns BoundArguments or a *BindError.
//
//	sig := args.NewBuilder().
//		Param("count", args.TypeOf[int]()).
//		Param("reason", nil, args.Rest()).
//		MustBuild()
//
//	bound, err := args.NewBinder().Bind(ctx, sig, "5 spam in general", args.Origin{Command: "purge"})
//
// Conversions run one at a time in declaration order. Registries, signatures
// and binders are safe to share once set up.
package args
