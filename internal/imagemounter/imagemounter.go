package imagemounter

import (
	"fmt"

	"github.com/slok/idev/internal/device"
	"github.com/slok/idev/internal/handle"
	"github.com/slok/idev/internal/lockdown"
	"github.com/slok/idev/internal/log"
	"github.com/slok/idev/internal/native"
)

// ProgressFunc observes the bytes sent during an upload.
type ProgressFunc func(sent, total uint64)

type uploadOptions struct {
	progress ProgressFunc
}

// UploadOption customizes an upload.
type UploadOption func(*uploadOptions)

// WithProgress observes the upload progress. The observer can't abort the upload.
func WithProgress(f ProgressFunc) UploadOption {
	return func(o *uploadOptions) {
		o.progress = f
	}
}

// Mounter is a connection to the mobile image mounter service.
type Mounter struct {
	lib    native.Library
	lock   *handle.Lock
	logger log.Logger
}

// New connects to the image mounter service svc started on dev. The mounter
// depends on svc, and through it on the lockdown client and the device.
func New(dev *device.Device, svc *lockdown.Service) (*Mounter, error) {
	dh, err := dev.Lock().Check()
	if err != nil {
		return nil, fmt.Errorf("could not connect to image mounter: %w", ErrMissingObjectDependency)
	}

	parent := svc.Lock()
	sh, err := parent.Check()
	if err != nil {
		return nil, fmt.Errorf("could not connect to image mounter: %w", ErrMissingObjectDependency)
	}

	lib := dev.Library()
	h, st := lib.MobileImageMounterNew(dh, sh)
	if err := fromStatus(st); err != nil {
		return nil, fmt.Errorf("could not connect to image mounter: %w", err)
	}

	logger := svc.Logger().WithValues(log.Kv{"svc": "imagemounter.Mounter"})
	logger.Debugf("Image mounter connected")

	return &Mounter{
		lib:    lib,
		lock:   handle.New(h, parent),
		logger: logger,
	}, nil
}

// UploadImage loads the image and its signature from disk and uploads them.
func (m *Mounter) UploadImage(imagePath, imageType, signaturePath string, opts ...UploadOption) error {
	p, err := LoadPayload(imagePath, signaturePath)
	if err != nil {
		return err
	}

	return m.UploadPayload(p, imageType, opts...)
}

// UploadPayload uploads a loaded image to the device staging area. An empty
// image type lets the device pick its default.
func (m *Mounter) UploadPayload(p *Payload, imageType string, opts ...UploadOption) error {
	o := uploadOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	h, err := m.lock.Check()
	if err != nil {
		return ErrMissingObjectDependency
	}

	st := m.lib.MobileImageMounterUploadImage(h, imageType, p.Image, p.Signature, o.callback())
	if err := fromStatus(st); err != nil {
		return fmt.Errorf("could not upload image %q: %w", p.ImagePath, err)
	}

	m.logger.Debugf("Uploaded %d bytes image %q", len(p.Image), p.ImagePath)

	return nil
}

// callback always tells the native layer to continue.
func (o uploadOptions) callback() native.UploadCallback {
	progress := o.progress
	return func(sent, total uint64) int64 {
		if progress != nil {
			progress(sent, total)
		}
		return 0
	}
}

// MountImage mounts the image previously uploaded to imagePath on the device,
// verified with the local signature file. It returns the device response.
func (m *Mounter) MountImage(imagePath, signaturePath, imageType string) (any, error) {
	signature, err := readSignature(signaturePath)
	if err != nil {
		return nil, err
	}

	h, err := m.lock.Check()
	if err != nil {
		return nil, ErrMissingObjectDependency
	}

	res, st := m.lib.MobileImageMounterMountImage(h, imagePath, signature, imageType)
	if err := fromStatus(st); err != nil {
		if detail := detailedError(res); detail != "" {
			return nil, fmt.Errorf("could not mount image %q: %w: %s", imagePath, err, detail)
		}
		return nil, fmt.Errorf("could not mount image %q: %w", imagePath, err)
	}

	return res, nil
}

// LookupImage returns the device information about the mounted images of imageType.
func (m *Mounter) LookupImage(imageType string) (any, error) {
	h, err := m.lock.Check()
	if err != nil {
		return nil, ErrMissingObjectDependency
	}

	res, st := m.lib.MobileImageMounterLookupImage(h, imageType)
	if err := fromStatus(st); err != nil {
		return nil, fmt.Errorf("could not lookup %q images: %w", imageType, err)
	}

	return res, nil
}

// Hangup tells the service the session is over. The mounter still needs to be closed.
func (m *Mounter) Hangup() error {
	h, err := m.lock.Check()
	if err != nil {
		return ErrMissingObjectDependency
	}

	if err := fromStatus(m.lib.MobileImageMounterHangup(h)); err != nil {
		return fmt.Errorf("could not hang up: %w", err)
	}

	return nil
}

// Close disconnects from the service. It is safe to call many times and always
// returns nil.
func (m *Mounter) Close() error {
	if !m.lock.Release(m.lib.MobileImageMounterFree) {
		m.logger.Debugf("Image mounter free skipped, mounter or one of its dependencies already released")
	}
	return nil
}

// MountedSignatures returns the signatures of a LookupImage response.
func MountedSignatures(res any) [][]byte {
	dict, ok := res.(map[string]any)
	if !ok {
		return nil
	}

	raw, ok := dict["ImageSignature"].([]any)
	if !ok {
		return nil
	}

	sigs := make([][]byte, 0, len(raw))
	for _, r := range raw {
		if sig, ok := r.([]byte); ok {
			sigs = append(sigs, sig)
		}
	}
	return sigs
}

func detailedError(res any) string {
	dict, ok := res.(map[string]any)
	if !ok {
		return ""
	}

	for _, k := range []string{"DetailedError", "Error"} {
		if s, ok := dict[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
