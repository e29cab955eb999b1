package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/hiredoor/internal/api"
	"github.com/jonathan/hiredoor/internal/notify"
	"github.com/jonathan/hiredoor/internal/types"
)

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Manage the resume used to personalize emails",
}

var resumeShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored resume and its parsed profile",
	Args:  cobra.NoArgs,
	RunE:  withApp(runResumeShow),
}

var resumeUploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Upload a PDF, DOC, DOCX or TXT resume (max 5MB)",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runResumeUpload),
}

var resumePasteCmd = &cobra.Command{
	Use:   "paste",
	Short: "Upload resume text from a file or stdin",
	Args:  cobra.NoArgs,
	RunE:  withApp(runResumePaste),
}

var resumeDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the stored resume",
	Args:  cobra.NoArgs,
	RunE:  withApp(runResumeDelete),
}

var resumeHideTipCmd = &cobra.Command{
	Use:   "hide-tip",
	Short: "Stop suggesting a resume upload after searches",
	Args:  cobra.NoArgs,
	RunE:  withApp(runResumeHideTip),
}

var resumePasteFile string

func init() {
	resumePasteCmd.Flags().StringVarP(&resumePasteFile, "file", "f", "-", "Text file to read, or - for stdin")

	resumeCmd.AddCommand(resumeShowCmd)
	resumeCmd.AddCommand(resumeUploadCmd)
	resumeCmd.AddCommand(resumePasteCmd)
	resumeCmd.AddCommand(resumeDeleteCmd)
	resumeCmd.AddCommand(resumeHideTipCmd)
	rootCmd.AddCommand(resumeCmd)
}

func runResumeShow(ctx context.Context, a *app, _ *cobra.Command, _ []string) error {
	if _, err := a.requireUser(ctx); err != nil {
		return err
	}
	resume, err := a.client.GetResume(ctx)
	if err != nil {
		return err
	}
	a.printer.PrintResume(resume)
	return nil
}

func (a *app) resumeUploaded(resp *types.ResumeUploadResponse) {
	notify.Success(a.notifier, "Resume uploaded")
	a.printer.PrintResume(&types.ResumeResponse{
		HasResume:      true,
		ResumeFilename: types.StringPtr(resp.ResumeFilename),
		ResumeURL:      types.StringPtr(resp.ResumeURL),
		Profile:        &resp.Profile,
	})
}

func runResumeUpload(ctx context.Context, a *app, _ *cobra.Command, args []string) error {
	if _, err := a.requireUser(ctx); err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open resume: %w", err)
	}
	defer f.Close()

	resp, err := a.client.UploadResume(ctx, filepath.Base(args[0]), f)
	if err != nil {
		notify.Error(a.notifier, api.UserMessage(err))
		return err
	}
	a.resumeUploaded(resp)
	return nil
}

func runResumePaste(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
	if _, err := a.requireUser(ctx); err != nil {
		return err
	}

	var (
		text []byte
		err  error
	)
	filename := "resume.txt"
	if resumePasteFile == "-" {
		text, err = io.ReadAll(cmd.InOrStdin())
	} else {
		text, err = os.ReadFile(resumePasteFile)
		filename = filepath.Base(resumePasteFile)
	}
	if err != nil {
		return fmt.Errorf("failed to read resume text: %w", err)
	}

	resp, err := a.client.UploadResumeText(ctx, types.ResumeTextRequest{Text: string(text), Filename: filename})
	if err != nil {
		notify.Error(a.notifier, api.UserMessage(err))
		return err
	}
	a.resumeUploaded(resp)
	return nil
}

func runResumeDelete(ctx context.Context, a *app, _ *cobra.Command, _ []string) error {
	if _, err := a.requireUser(ctx); err != nil {
		return err
	}
	if err := a.client.DeleteResume(ctx); err != nil {
		notify.Error(a.notifier, api.UserMessage(err))
		return err
	}
	notify.Success(a.notifier, "Resume deleted")
	return nil
}

func runResumeHideTip(ctx context.Context, a *app, _ *cobra.Command, _ []string) error {
	if err := a.prefs.SetHideResumePrompt(ctx, true); err != nil {
		return err
	}
	notify.Success(a.notifier, "Resume tip hidden")
	return nil
}
