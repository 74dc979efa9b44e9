// Package cloud wires the aws-sdk-go-v2 S3 client into the native
// function ABI: open a client from the default credential chain, put and
// get objects by bucket/key. The pack carries no teacher module for
// object storage (risor's own s3fs-backed modules were not present in
// this retrieval pack), so this is grounded directly on SPEC_FULL.md's
// domain-stack expansion and built in the same
// Register(funcs)/NativeOneReturn shape every other module here uses,
// with the client itself held behind a heap handle exactly like db's
// connection handle.
package cloud

import (
	"bytes"
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/glint-lang/glint/symbols"
	"github.com/glint-lang/glint/value"
)

// ClientTypeID is this module's reserved heap TypeID for S3 client
// handles (see DESIGN.md's module TypeID registry).
const ClientTypeID uint32 = 8

// Register defines "s3_client", "s3_put", and "s3_get" in funcs.
func Register(funcs *symbols.FuncTable) {
	funcs.Define("s3_client", symbols.FuncEntry{
		Kind:      symbols.FuncNative,
		NativeOne: newClient,
	})
	funcs.Define("s3_put", symbols.FuncEntry{
		Kind:      symbols.FuncNative,
		NativeOne: put,
	})
	funcs.Define("s3_get", symbols.FuncEntry{
		Kind:      symbols.FuncNative,
		NativeOne: get,
	})
}

func newClient(host symbols.NativeHost, receiver *value.Value, args []value.Value) value.Value {
	var opts []func(*awsconfig.LoadOptions) error
	if len(args) > 0 && args[0].IsString() {
		opts = append(opts, awsconfig.WithRegion(string(host.ValueAsString(args[0]))))
	}
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		host.Panic(err.Error())
		return value.None
	}
	client := s3.NewFromConfig(cfg)
	return host.NewHandle(ClientTypeID, client, nil)
}

func put(host symbols.NativeHost, receiver *value.Value, args []value.Value) value.Value {
	if len(args) < 3 {
		host.Panic("s3_put requires a client, bucket, and key argument")
		return value.None
	}
	client, ok := clientArg(host, args[0])
	if !ok {
		return value.None
	}
	bucket := string(host.ValueAsString(args[1]))
	key := string(host.ValueAsString(args[2]))
	var body []byte
	if len(args) > 3 {
		body = host.ValueAsString(args[3])
	}
	_, err := client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		host.Panic(err.Error())
		return value.None
	}
	return value.True
}

func get(host symbols.NativeHost, receiver *value.Value, args []value.Value) value.Value {
	if len(args) < 3 {
		host.Panic("s3_get requires a client, bucket, and key argument")
		return value.None
	}
	client, ok := clientArg(host, args[0])
	if !ok {
		return value.None
	}
	bucket := string(host.ValueAsString(args[1]))
	key := string(host.ValueAsString(args[2]))
	out, err := client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		host.Panic(err.Error())
		return value.None
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		host.Panic(err.Error())
		return value.None
	}
	return host.AllocString(string(data))
}

func clientArg(host symbols.NativeHost, v value.Value) (*s3.Client, bool) {
	native, ok := host.HandleNative(v, ClientTypeID)
	if !ok {
		host.Panic("argument is not an s3 client handle")
		return nil, false
	}
	return native.(*s3.Client), true
}
