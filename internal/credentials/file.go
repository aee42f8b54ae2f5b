package credentials

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"

	kverrors "github.com/systmms/vaultkv/internal/errors"
)

// Credential files mix two line grammars. Shell style assigns the VAULT_*
// variables, with or without an export prefix and optional quoting:
//
//	export VAULT_ADDR="https://vault.example.com:8200"
//	VAULT_TOKEN=hvs.XXXX
//
// Property style carries connection settings under a dotted path ending in
// vault.<key>, as exported by JVM deployment tooling:
//
//	com.example.vault.server=vault.example.com
//	vault.port=8200
var (
	shellAssignPattern = regexp.MustCompile(`^(\w+)=["']?([^"']*)["']?`)
	propertyPattern    = regexp.MustCompile(`^(?:[\w-]+\.)*vault\.(\w+)=(.+)$`)
)

// loadCredentialFile merges settings from path into creds. Address, token
// and the AppRole pair only fill fields that are still empty, so process
// variables keep precedence in the default environment. Namespace, TLS
// skip-verify and KV version always take the file's value: those are pinned
// per environment rather than per shell.
func loadCredentialFile(path string, creds *Credentials) error {
	f, err := os.Open(path)
	if err != nil {
		return kverrors.UserError{
			Message: fmt.Sprintf("Cannot read credentials file %s", path),
			Err:     err,
		}
	}
	defer f.Close()

	var server, port, protocol string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		line = strings.ReplaceAll(line, "export ", "")

		if m := shellAssignPattern.FindStringSubmatch(line); m != nil {
			key, value := m[1], m[2]
			switch key {
			case "VAULT_ADDR":
				if creds.Address == "" {
					creds.Address = value
				}
			case "VAULT_TOKEN":
				if creds.Token == "" {
					creds.Token = value
				}
			case "VAULT_ROLE_ID":
				if creds.RoleID == "" {
					creds.RoleID = value
				}
			case "VAULT_ROLE_SECRET":
				if creds.RoleSecret == "" {
					creds.RoleSecret = value
				}
			case "VAULT_NAMESPACE":
				creds.Namespace = value
			case "VAULT_SKIP_VERIFY":
				creds.SkipVerify = strings.EqualFold(value, "true")
			case "VAULT_KV_VERSION":
				parsed, err := ParseKVVersion(value)
				if err != nil {
					return err
				}
				creds.KVVersion = parsed
			}
			continue
		}

		if m := propertyPattern.FindStringSubmatch(line); m != nil {
			key, value := m[1], m[2]
			switch key {
			case "server":
				server = value
			case "port":
				port = value
			case "protocol":
				protocol = value
			case "roleId":
				if creds.RoleID == "" {
					creds.RoleID = value
				}
			case "roleSecret":
				if creds.RoleSecret == "" {
					creds.RoleSecret = value
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return kverrors.UserError{
			Message: fmt.Sprintf("Reading credentials file %s", path),
			Err:     err,
		}
	}

	// Property-style files describe the address as server/port/protocol
	if creds.Address == "" && server != "" {
		if protocol == "" {
			protocol = "https"
		}
		if port == "" {
			port = "8200"
		}
		creds.Address = fmt.Sprintf("%s://%s:%s", protocol, server, port)
	}

	return nil
}
