package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/foodnet/analytics/internal/auth/domain"
	authService "github.com/foodnet/analytics/internal/auth/service"
	authUseCase "github.com/foodnet/analytics/internal/auth/usecase"
	userDomain "github.com/foodnet/analytics/internal/user/domain"
)

// createUserResult is what the command reports back to the operator.
type createUserResult struct {
	ID          uuid.UUID
	Username    string
	Role        string
	AccessToken string
}

// RunCreateUser creates a new user account with an explicit role. Unlike the
// HTTP signup flow, which always registers plain users, this command can
// bootstrap admin accounts. When tokenTTL is positive it also issues an
// access token for the new account, so an operator can call the API without
// a separate login.
//
// Requirements: Database must be migrated and accessible.
func RunCreateUser(
	ctx context.Context,
	users authUseCase.UserStore,
	passwords authService.PasswordService,
	tokens authService.TokenService,
	logger *slog.Logger,
	username string,
	email string,
	password string,
	role string,
	tokenTTL time.Duration,
	format string,
	io IOTuple,
) error {
	logger.Info("creating new user", slog.String("username", username))

	parsedRole, err := parseAccountRole(role)
	if err != nil {
		return err
	}

	if password == "" {
		// Interactive mode
		password, err = promptForPassword(io)
		if err != nil {
			return fmt.Errorf("failed to get password: %w", err)
		}
	}

	if len(password) < 8 || len(password) > 128 {
		return fmt.Errorf("password must be between 8 and 128 characters")
	}

	hashed, err := passwords.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &userDomain.User{
		ID:           uuid.Must(uuid.NewV7()),
		Username:     strings.TrimSpace(username),
		Email:        strings.TrimSpace(strings.ToLower(email)),
		PasswordHash: hashed,
		Role:         string(parsedRole),
	}

	if err := users.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	result := createUserResult{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
	}

	if tokenTTL > 0 {
		token, err := tokens.IssueWithTTL(user.Username, tokenTTL)
		if err != nil {
			return fmt.Errorf("failed to issue bootstrap token: %w", err)
		}
		result.AccessToken = token
	}

	if format == "json" {
		outputJSON(result, io.Writer)
	} else {
		outputText(result, io.Writer)
	}

	logger.Info("user created successfully",
		slog.String("user_id", user.ID.String()),
		slog.String("username", user.Username),
		slog.String("role", user.Role),
	)

	return nil
}

// parseAccountRole validates the role flag. Guest is a pipeline sentinel for
// unauthenticated callers, never a stored account role.
func parseAccountRole(role string) (authDomain.Role, error) {
	parsed, ok := authDomain.ParseRole(role)
	if !ok || parsed == authDomain.RoleGuest {
		return "", fmt.Errorf("invalid role: %s (valid options: admin, user)", role)
	}
	return parsed, nil
}

// promptForPassword reads the password from the command's input stream.
func promptForPassword(io IOTuple) (string, error) {
	reader := bufio.NewReader(io.Reader)

	_, _ = fmt.Fprint(io.Writer, "Enter password: ")
	password, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	return strings.TrimRight(password, "\r\n"), nil
}

// outputText outputs the result in human-readable text format.
func outputText(result createUserResult, writer io.Writer) {
	_, _ = fmt.Fprintln(writer, "\nUser created successfully!")
	_, _ = fmt.Fprintf(writer, "User ID: %s\n", result.ID.String())
	_, _ = fmt.Fprintf(writer, "Username: %s\n", result.Username)
	_, _ = fmt.Fprintf(writer, "Role: %s\n", result.Role)
	if result.AccessToken != "" {
		_, _ = fmt.Fprintf(writer, "Access token: %s\n", result.AccessToken)
	}
}

// outputJSON outputs the result in JSON format for machine consumption.
func outputJSON(result createUserResult, writer io.Writer) {
	out := map[string]string{
		"user_id":  result.ID.String(),
		"username": result.Username,
		"role":     result.Role,
	}
	if result.AccessToken != "" {
		out["access_token"] = result.AccessToken
	}

	jsonBytes, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
