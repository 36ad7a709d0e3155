package lib

import (
	"context"
	"fmt"

	"github.com/slok/idev/internal/app/lookupimage"
	"github.com/slok/idev/internal/app/mountimage"
	"github.com/slok/idev/internal/conventions"
)

// LookupImage returns the signatures of the images of a type mounted on a
// device. An empty image type is [DeveloperImageType].
func (c *Client) LookupImage(ctx context.Context, udid, imageType string) (*ImageLookup, error) {
	svc, err := lookupimage.NewService(lookupimage.ServiceConfig{
		Library:    c.library,
		Repository: c.repo,
		Metrics:    c.metrics,
		Label:      c.label,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, lookupimage.Request{UDID: udid, ImageType: imageType})
	if err != nil {
		return nil, mapError(err)
	}

	return &ImageLookup{
		UDID:       res.UDID,
		ImageType:  res.ImageType,
		Signatures: res.Signatures,
	}, nil
}

// MountImage uploads a disk image with its signature to a device and mounts it.
//
// If the device already has an image with the same signature mounted nothing
// is uploaded. Both the upload and the mount are journaled.
func (c *Client) MountImage(ctx context.Context, opts MountImageOpts) (*MountResult, error) {
	svc, err := mountimage.NewService(mountimage.ServiceConfig{
		Library:    c.library,
		Repository: c.repo,
		Metrics:    c.metrics,
		Label:      c.label,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	signaturePath := opts.SignaturePath
	if signaturePath == "" && opts.ImagePath != "" {
		signaturePath = conventions.SignaturePath(opts.ImagePath)
	}

	res, err := svc.Run(ctx, mountimage.Request{
		UDID:          opts.UDID,
		ImagePath:     opts.ImagePath,
		SignaturePath: signaturePath,
		ImageType:     opts.ImageType,
		UploadOnly:    opts.UploadOnly,
		Progress:      opts.Progress,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return &MountResult{
		UDID:           res.UDID,
		ImageType:      res.ImageType,
		Digest:         res.Digest,
		Size:           res.Size,
		AlreadyMounted: res.AlreadyMounted,
		Uploaded:       res.Uploaded,
		Mounted:        res.Mounted,
	}, nil
}
