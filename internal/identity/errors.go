package identity

import "errors"

var ErrEmptyViewerID = errors.New("empty_viewer_id")
