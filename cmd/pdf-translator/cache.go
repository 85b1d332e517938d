package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pdf-translator/internal/translator"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the translation cache",
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show cache location and entry count",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cache, err := translator.NewCache(cfg.CacheDir, time.Duration(cfg.CacheTTLDays)*24*time.Hour)
		if err != nil {
			return err
		}
		n, err := cache.Size()
		if err != nil {
			return err
		}
		fmt.Printf("Cache directory: %s\n", cfg.CacheDir)
		fmt.Printf("Entries:         %d\n", n)
		fmt.Printf("TTL:             %d days\n", cfg.CacheTTLDays)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached translations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cache, err := translator.NewCache(cfg.CacheDir, 0)
		if err != nil {
			return err
		}
		if err := cache.Clear(); err != nil {
			return err
		}
		fmt.Println("Cache cleared.")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheInfoCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
