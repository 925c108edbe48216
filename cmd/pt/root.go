package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"pivotalcli/api"
	"pivotalcli/config"
	"pivotalcli/models"
	"pivotalcli/services"
	"pivotalcli/utils"
)

// skipDirectoryAnnotation が付いたコマンドは起動時にユーザーディレクトリを用意しません
const skipDirectoryAnnotation = "pt/skip-directory"

// app はコマンド実行に必要な依存関係をまとめたものです
type app struct {
	users   *services.UserDirectory
	stories *services.StoryService
}

// rootOptions はグローバルフラグです
type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &rootOptions{}
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "pt",
		Short: "PivotalTracker CLI",
		Long: `pt はPivotalTrackerのストーリーを端末から操作するツールです。

設定ファイル (~/.pt) の api_token, project_id, usernames を使用します。`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			return a.setup(cmd, opts, out)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "設定ファイルのパス (既定: ~/.pt)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "詳細なログを出力する")

	rootCmd.AddCommand(newListCmd(a))
	rootCmd.AddCommand(newShowCmd(a))
	rootCmd.AddCommand(newUpdateCmd(a))
	rootCmd.AddCommand(newBacklogCmd(a))
	rootCmd.AddCommand(newRefreshCmd(a, out))
	rootCmd.AddCommand(newAuthCmd(a))

	return rootCmd
}

// setup は設定を読み込み、ユーザーディレクトリを用意します
func (a *app) setup(cmd *cobra.Command, opts *rootOptions, out io.Writer) error {
	cfg, doc, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("設定の読み込みに失敗しました: %w", err)
	}

	level := cfg.LogLevel
	if opts.verbose {
		level = "debug"
	}
	if err := utils.InitLogger(level); err != nil {
		utils.LogWarn("不正なログレベル %q: %v", level, err)
	}
	if doc.Version() == config.SchemaLegacy {
		utils.LogWarn("設定ファイル %s は旧形式 (username) です。usernames に移行してください", doc.Path())
	}

	client := api.NewTrackerClient(cfg)
	a.users = services.NewUserDirectory(client, doc)

	var dir models.Directory
	if cmd.Annotations[skipDirectoryAnnotation] == "" {
		dir, err = a.users.LoadOrBuild(cmd.Context())
		if err != nil {
			// 担当者名が表示できないだけなので続行します
			utils.LogWarn("ユーザーディレクトリを作成できません: %v", err)
		}
	}

	a.stories = services.NewStoryService(cfg, client, dir, out)
	return nil
}
