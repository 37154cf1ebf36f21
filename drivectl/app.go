package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli"

	"github.com/c2fo/drivefm"
	"github.com/c2fo/drivefm/config"
	"github.com/c2fo/drivefm/gdrive"
	"github.com/c2fo/drivefm/options"
	"github.com/c2fo/drivefm/options/scope"
	"github.com/c2fo/drivefm/options/upload"
	"github.com/c2fo/drivefm/utils"
)

const folderContentType = "application/vnd.google-apps.folder"

// gatewayFunc builds the gateway a command talks to from the global flags.
type gatewayFunc func(c *cli.Context) (drivefm.Gateway, error)

func newGateway(c *cli.Context) (drivefm.Gateway, error) {
	opts := []options.NewGatewayOption[gdrive.Gateway]{
		gdrive.WithUserAgent("drivectl/" + config.Version),
	}
	if ep := c.GlobalString("endpoint"); ep != "" {
		opts = append(opts, gdrive.WithEndpoint(ep))
	}
	if ep := c.GlobalString("upload-endpoint"); ep != "" {
		opts = append(opts, gdrive.WithUploadEndpoint(ep))
	}
	gw, err := gdrive.NewGateway(c.GlobalString("token"), opts...)
	if err != nil {
		return nil, err
	}
	return gw, nil
}

// newApp builds the CLI. Commands run under ctx.
func newApp(ctx context.Context, gateway gatewayFunc) *cli.App {
	app := cli.NewApp()
	app.Name = "drivectl"
	app.Usage = "Lists, uploads, renames, deletes and downloads the files of a Google Drive folder"
	app.Version = config.Version
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "token",
			Usage:  "Google Drive OAuth access token",
			EnvVar: "DRIVEFM_ACCESS_TOKEN",
		},
		cli.StringFlag{
			Name:   "folder",
			Usage:  "id of the folder to work in; empty means the whole drive",
			EnvVar: "DRIVEFM_FOLDER_ID",
		},
		cli.StringFlag{
			Name:   "endpoint",
			Usage:  "Drive v3 API base URL",
			EnvVar: config.EnvDriveEndpoint,
		},
		cli.StringFlag{
			Name:   "upload-endpoint",
			Usage:  "Drive v3 upload base URL",
			EnvVar: config.EnvDriveUploadEndpoint,
		},
	}

	cmd := &commands{ctx: ctx, gateway: gateway}
	app.Commands = []cli.Command{
		{
			Name:   "ls",
			Usage:  "list files, newest first",
			Action: cmd.list,
		},
		{
			Name:      "put",
			Usage:     "upload a local file",
			ArgsUsage: "<local path>",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "name", Usage: "remote file name; defaults to the local base name"},
				cli.StringFlag{Name: "type", Usage: "content type; defaults to a guess from the extension"},
			},
			Action: cmd.put,
		},
		{
			Name:      "mv",
			Usage:     "rename a file",
			ArgsUsage: "<file id> <new name>",
			Action:    cmd.rename,
		},
		{
			Name:      "rm",
			Usage:     "delete a file",
			ArgsUsage: "<file id>",
			Action:    cmd.remove,
		},
		{
			Name:      "get",
			Usage:     "download a file",
			ArgsUsage: "<file id> <local path>",
			Action:    cmd.get,
		},
		{
			Name:      "thumb",
			Usage:     "save a file's thumbnail",
			ArgsUsage: "<file id> <local path>",
			Action:    cmd.thumbnail,
		},
	}
	return app
}

type commands struct {
	ctx     context.Context
	gateway gatewayFunc
}

func requireArgs(c *cli.Context, names ...string) error {
	for i, name := range names {
		if utils.IsBlank(c.Args().Get(i)) {
			return fmt.Errorf("%s requires a non-empty %s argument", c.Command.Name, name)
		}
	}
	return nil
}

func folderScope(c *cli.Context) []options.CallOption {
	if id := c.GlobalString("folder"); id != "" {
		return []options.CallOption{scope.WithContainer(id)}
	}
	return nil
}

func (cmd *commands) list(c *cli.Context) error {
	gw, err := cmd.gateway(c)
	if err != nil {
		return err
	}
	files, err := gw.List(cmd.ctx, folderScope(c)...)
	if err != nil {
		return err
	}

	out := c.App.Writer
	if len(files) == 0 {
		_, _ = fmt.Fprintln(out, "no files")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	folder := color.New(color.FgBlue, color.Bold)
	for _, f := range files {
		name := f.Name
		if f.ContentType == folderContentType {
			name = folder.Sprint(f.Name + "/")
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.ID, f.Size, f.ModifiedAt.Local().Format(time.DateTime), name)
	}
	return tw.Flush()
}

func (cmd *commands) put(c *cli.Context) error {
	if err := requireArgs(c, "local path"); err != nil {
		return err
	}
	local, err := utils.ExpandPath(c.Args().Get(0))
	if err != nil {
		return err
	}

	f, err := os.Open(local) //nolint:gosec
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", local)
	}

	name := c.String("name")
	if name == "" {
		name = filepath.Base(local)
	}
	contentType := c.String("type")
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(local))
	}

	gw, err := cmd.gateway(c)
	if err != nil {
		return err
	}
	opts := append(folderScope(c), upload.WithContentLength(info.Size()))
	rec, err := gw.Upload(cmd.ctx, name, contentType, f, opts...)
	if err != nil {
		return err
	}
	_, err = color.New(color.FgGreen).Fprintf(c.App.Writer, "uploaded %s (%s, %s bytes)\n", rec.Name, rec.ID, rec.Size)
	return err
}

func (cmd *commands) rename(c *cli.Context) error {
	if err := requireArgs(c, "file id", "new name"); err != nil {
		return err
	}
	gw, err := cmd.gateway(c)
	if err != nil {
		return err
	}
	rec, err := gw.Rename(cmd.ctx, c.Args().Get(0), c.Args().Get(1))
	if err != nil {
		return err
	}
	_, err = color.New(color.FgGreen).Fprintf(c.App.Writer, "renamed %s to %s\n", rec.ID, rec.Name)
	return err
}

func (cmd *commands) remove(c *cli.Context) error {
	if err := requireArgs(c, "file id"); err != nil {
		return err
	}
	gw, err := cmd.gateway(c)
	if err != nil {
		return err
	}
	id := c.Args().Get(0)
	if err := gw.Delete(cmd.ctx, id); err != nil {
		return err
	}
	_, err = color.New(color.FgYellow).Fprintf(c.App.Writer, "deleted %s\n", id)
	return err
}

func (cmd *commands) get(c *cli.Context) error {
	if err := requireArgs(c, "file id", "local path"); err != nil {
		return err
	}
	local, err := utils.ExpandPath(c.Args().Get(1))
	if err != nil {
		return err
	}
	gw, err := cmd.gateway(c)
	if err != nil {
		return err
	}

	dl, err := gw.Download(cmd.ctx, c.Args().Get(0))
	if err != nil {
		return err
	}
	defer func() { _ = dl.Close() }()

	n, err := writeLocal(local, dl.Body)
	if err != nil {
		return err
	}
	_, err = color.New(color.FgGreen).Fprintf(c.App.Writer, "saved %d bytes to %s\n", n, local)
	return err
}

func (cmd *commands) thumbnail(c *cli.Context) error {
	if err := requireArgs(c, "file id", "local path"); err != nil {
		return err
	}
	local, err := utils.ExpandPath(c.Args().Get(1))
	if err != nil {
		return err
	}
	gw, err := cmd.gateway(c)
	if err != nil {
		return err
	}

	thumb, err := gw.ResolveThumbnail(cmd.ctx, c.Args().Get(0))
	if errors.Is(err, drivefm.ErrThumbnailUnavailable) {
		return fmt.Errorf("no thumbnail available for %s", c.Args().Get(0))
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(local, thumb.Data, 0o600); err != nil {
		return err
	}
	_, err = color.New(color.FgGreen).Fprintf(c.App.Writer, "saved %s thumbnail (%s, from %s) to %s\n",
		c.Args().Get(0), thumb.ContentType, thumb.Source, local)
	return err
}

// writeLocal copies r into a new file at path. A partially written file is removed.
func writeLocal(path string, r io.Reader) (n int64, err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) //nolint:gosec
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = utils.WrapCloseError(cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()
	return utils.CopyBuffered(f, r, 0)
}
