package sphinx

import "github.com/fogcompute/platform/fogerr"

// ErrInvalidPath is returned by Wrap when the path is empty, too long, or
// contains a malformed hop key.
func ErrInvalidPath(detail string) *fogerr.Error {
	return fogerr.New(fogerr.KindInvalidPath, "%s", detail)
}

// ErrTooManyHops is returned by Wrap when len(path) > MaxHops.
func ErrTooManyHops(got int) *fogerr.Error {
	return fogerr.New(fogerr.KindTooManyHops, "path length %d exceeds max hops %d", got, MaxHops)
}

// ErrBadMAC is returned by ProcessHop when header MAC verification fails.
func ErrBadMAC() *fogerr.Error {
	return fogerr.New(fogerr.KindBadMAC, "")
}

// ErrReplay is returned by ProcessHop when the packet's tag was already
// present in the replay cache.
func ErrReplay() *fogerr.Error {
	return fogerr.New(fogerr.KindReplay, "")
}
