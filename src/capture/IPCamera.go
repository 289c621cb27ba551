package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"syscall"
	"time"

	"github.com/PsycoVenom0/security-relay/src/log"
)

// ErrCameraUnreachable marks a snapshot failure caused by a refused
// connection or a timeout. Only these failures lead to a fallback alert.
var ErrCameraUnreachable = errors.New("camera unreachable")

// ErrSnapshotTooLarge is returned when the camera sends more than MaxSize bytes.
var ErrSnapshotTooLarge = errors.New("snapshot exceeds maximum size")

// A Snapshot is a still image held in memory for one dispatch.
type Snapshot struct {
	Data        []byte
	ContentType string
}

// IPCamera fetches still images from the HTTP endpoint of a camera.
type IPCamera struct {
	Client  *http.Client
	URL     string
	Timeout time.Duration
	MaxSize int64
}

func NewIPCamera(client *http.Client, url string, timeout time.Duration, maxSize int64) *IPCamera {
	return &IPCamera{
		Client:  client,
		URL:     url,
		Timeout: timeout,
		MaxSize: maxSize,
	}
}

// Snapshot requests a single image. The whole request, body included, is
// bounded by the camera timeout.
func (c *IPCamera) Snapshot(ctx context.Context) (Snapshot, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("capture.IPCamera.Snapshot(): %w", err)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return Snapshot{}, classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return Snapshot{}, fmt.Errorf("capture.IPCamera.Snapshot(): camera responded with status %d", resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if c.MaxSize > 0 {
		body = io.LimitReader(resp.Body, c.MaxSize+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return Snapshot{}, classify(err)
	}
	if c.MaxSize > 0 && int64(len(data)) > c.MaxSize {
		return Snapshot{}, fmt.Errorf("capture.IPCamera.Snapshot(): %w (%d bytes)", ErrSnapshotTooLarge, c.MaxSize)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	log.Log.Debug("capture.IPCamera.Snapshot(): received " + strconv.Itoa(len(data)) + " bytes from " + c.URL)

	return Snapshot{
		Data:        data,
		ContentType: contentType,
	}, nil
}

// IsUnreachable tells if the error was caused by a refused connection or
// a timeout, directly or wrapped.
func IsUnreachable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrCameraUnreachable) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func classify(err error) error {
	if IsUnreachable(err) {
		return fmt.Errorf("capture.IPCamera.Snapshot(): %w: %v", ErrCameraUnreachable, err)
	}
	return fmt.Errorf("capture.IPCamera.Snapshot(): %w", err)
}
