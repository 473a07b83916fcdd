// Package s3 implements blobstore.Store on Amazon S3, plus a
// DynamoDB-backed Catalog for atomically tracking the latest snapshot
// of a container namespace.
package s3
