package assets

import "errors"

var (
	// ErrMissingToken reports that an operation needed the management API
	// but no access token was configured.
	ErrMissingToken = errors.New("assets: management api token required")
	// ErrAuth reports that the management API rejected the configured token.
	ErrAuth = errors.New("assets: authentication failed")
	// ErrUpload reports a transport failure while creating an asset.
	ErrUpload = errors.New("assets: upload failed")
	// ErrUploadUnready reports that an upload exists but never exposed a
	// public URL within the readiness window.
	ErrUploadUnready = errors.New("assets: upload url not ready")
	// ErrNotFound reports that an upload id resolved in none of the
	// attempted scopes.
	ErrNotFound = errors.New("assets: upload not found")
	// ErrNoReference reports that no asset reference was supplied.
	ErrNoReference = errors.New("assets: no asset reference")
)
