package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/idev/internal/app/lookupimage"
	"github.com/slok/idev/internal/app/mountimage"
	"github.com/slok/idev/internal/conventions"
	"github.com/slok/idev/internal/model"
	"github.com/slok/idev/internal/printer"
)

// ImageCommand is the parent command for developer disk image subcommands.
type ImageCommand struct {
	Cmd *kingpin.CmdClause

	imageType string
}

// NewImageCommand returns the image parent command.
func NewImageCommand(app *kingpin.Application) *ImageCommand {
	c := &ImageCommand{}

	c.Cmd = app.Command("image", "Manage the disk images mounted on a device.")
	c.Cmd.Flag("type", "Image type.").Default(model.DeveloperImageType).StringVar(&c.imageType)

	return c
}

type ImageLookupCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
	imgCmd  *ImageCommand

	format string
}

// NewImageLookupCommand returns the image lookup command.
func NewImageLookupCommand(rootCmd *RootCommand, imgCmd *ImageCommand) *ImageLookupCommand {
	c := &ImageLookupCommand{rootCmd: rootCmd, imgCmd: imgCmd}

	c.Cmd = imgCmd.Cmd.Command("lookup", "Show the mounted images of a type.")
	c.Cmd.Flag("format", "Output format (table, json, plist).").Default(formatTable).EnumVar(&c.format, formats...)

	return c
}

func (c ImageLookupCommand) Name() string { return c.Cmd.FullCommand() }

func (c ImageLookupCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	lib, err := newLibrary(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	repo, err := newRepository(ctx, c.rootCmd)
	if err != nil {
		return err
	}
	defer closeRepository(repo, logger)

	svc, err := lookupimage.NewService(lookupimage.ServiceConfig{
		Library:    lib,
		Repository: repo,
		Metrics:    c.rootCmd.Metrics,
		Label:      c.rootCmd.Label,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, lookupimage.Request{
		UDID:      c.rootCmd.UDID,
		ImageType: c.imgCmd.imageType,
	})
	if err != nil {
		return err
	}

	err = newPrinter(c.format, c.rootCmd.Stdout).PrintMountedImages(printer.MountedImages{
		UDID:       res.UDID,
		ImageType:  res.ImageType,
		Signatures: res.Signatures,
	})
	if err != nil {
		return fmt.Errorf("could not print images: %w", err)
	}

	return nil
}

type ImageMountCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
	imgCmd  *ImageCommand

	imagePath     string
	signaturePath string
	uploadOnly    bool
}

// NewImageMountCommand returns the image mount command.
func NewImageMountCommand(rootCmd *RootCommand, imgCmd *ImageCommand) *ImageMountCommand {
	c := &ImageMountCommand{rootCmd: rootCmd, imgCmd: imgCmd}

	c.Cmd = imgCmd.Cmd.Command("mount", "Upload a disk image to a device and mount it.")
	c.Cmd.Flag("image", "Disk image file.").Required().StringVar(&c.imagePath)
	c.Cmd.Flag("signature", "Disk image signature file, defaults to the image path with a .signature suffix.").StringVar(&c.signaturePath)
	c.Cmd.Flag("upload-only", "Stage the image on the device without mounting it.").BoolVar(&c.uploadOnly)

	return c
}

func (c ImageMountCommand) Name() string { return c.Cmd.FullCommand() }

func (c ImageMountCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	lib, err := newLibrary(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	repo, err := newRepository(ctx, c.rootCmd)
	if err != nil {
		return err
	}
	defer closeRepository(repo, logger)

	svc, err := mountimage.NewService(mountimage.ServiceConfig{
		Library:    lib,
		Repository: repo,
		Metrics:    c.rootCmd.Metrics,
		Label:      c.rootCmd.Label,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	signaturePath := c.signaturePath
	if signaturePath == "" {
		signaturePath = conventions.SignaturePath(c.imagePath)
	}

	res, err := svc.Run(ctx, mountimage.Request{
		UDID:          c.rootCmd.UDID,
		ImagePath:     c.imagePath,
		SignaturePath: signaturePath,
		ImageType:     c.imgCmd.imageType,
		UploadOnly:    c.uploadOnly,
		Progress: func(sent, total uint64) {
			logger.Debugf("Uploaded %s of %s", printer.FormatBytes(int64(sent)), printer.FormatBytes(int64(total)))
		},
	})
	if err != nil {
		return err
	}

	return newPrinter(formatTable, c.rootCmd.Stdout).PrintMessage(mountMessage(*res))
}

func mountMessage(res mountimage.Result) string {
	switch {
	case res.AlreadyMounted:
		return fmt.Sprintf("%s image %s already mounted on %s", res.ImageType, res.Digest, res.UDID)
	case res.Mounted:
		return fmt.Sprintf("%s image %s mounted on %s", res.ImageType, res.Digest, res.UDID)
	default:
		return fmt.Sprintf("%s image %s (%s) uploaded to %s", res.ImageType, res.Digest, printer.FormatBytes(res.Size), res.UDID)
	}
}
