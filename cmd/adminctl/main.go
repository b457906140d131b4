package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/manifoldco/promptui"

	"github.com/charadev96/corkboard/internal/shared/log"
)

const (
	actionCreateUser = "create user"
	actionSetAdmin   = "promote/demote admin"
	actionMintInvite = "mint invite"
	actionQuit       = "quit"
)

// adminctl drives the server's loopback operator surface interactively.
func main() {
	godotenv.Load()
	logger := log.New("adminctl")

	addr := flag.String("addr", "http://127.0.0.1:8081", "admin listener base URL")
	flag.Parse()

	for {
		sel := promptui.Select{
			Label: "Action",
			Items: []string{actionCreateUser, actionSetAdmin, actionMintInvite, actionQuit},
		}
		_, action, err := sel.Run()
		if err != nil {
			logger.Fatal().Err(err).Msg("prompt aborted")
		}

		switch action {
		case actionCreateUser:
			err = createUser(*addr)
		case actionSetAdmin:
			err = setAdmin(*addr)
		case actionMintInvite:
			err = mintInvite(*addr)
		case actionQuit:
			return
		}
		if err != nil {
			logger.Error().Err(err).Msg("action failed")
		}
	}
}

func createUser(addr string) error {
	login, err := input("Login", false)
	if err != nil {
		return err
	}
	password, err := input("Password", true)
	if err != nil {
		return err
	}
	confirm := promptui.Prompt{
		Label:     "Admin",
		IsConfirm: true,
	}
	_, confirmErr := confirm.Run()
	admin := confirmErr == nil

	body := map[string]any{
		"login":    login,
		"password": password,
		"admin":    admin,
	}
	return post(addr+"/users", body)
}

func setAdmin(addr string) error {
	id, err := input("User ID", false)
	if err != nil {
		return err
	}
	confirm := promptui.Prompt{
		Label:     "Grant admin",
		IsConfirm: true,
	}
	_, confirmErr := confirm.Run()
	admin := confirmErr == nil

	return post(fmt.Sprintf("%s/users/%s/admin", addr, id), map[string]any{"admin": admin})
}

func mintInvite(addr string) error {
	id, err := input("Admin user ID", false)
	if err != nil {
		return err
	}
	resp, err := http.Get(fmt.Sprintf("%s/users/%s/invite", addr, id))
	if err != nil {
		return fmt.Errorf("failed to reach admin listener: %w", err)
	}
	defer resp.Body.Close()
	return report(resp)
}

func input(label string, masked bool) (string, error) {
	prompt := promptui.Prompt{
		Label: label,
	}
	if masked {
		prompt.Mask = '*'
	}
	value, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("prompt aborted: %w", err)
	}
	return value, nil
}

func post(url string, body map[string]any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to reach admin listener: %w", err)
	}
	defer resp.Body.Close()
	return report(resp)
}

func report(resp *http.Response) error {
	reply, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("server replied %s: %s", resp.Status, bytes.TrimSpace(reply))
	}
	fmt.Println(string(bytes.TrimSpace(reply)))
	return nil
}
