package classifier

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rule is one declarative classification rule: a regex pattern bound to a
// tier and a human-readable reason. Rules are data, never control flow, so
// new ones can be added without touching the evaluator.
type Rule struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
	Tier    string `yaml:"tier"`
	Reason  string `yaml:"reason"`
}

// RulesFile is the YAML schema root for ~/.llmsh/rules.yaml.
type RulesFile struct {
	Rules struct {
		DangerPatterns []Rule `yaml:"danger_patterns"`
	} `yaml:"rules"`
}

func loadRules(path string) ([]Rule, error) {
	if path == "" {
		return defaultRules(), nil
	}
	data, err := os.ReadFile(expandPath(path))
	if err != nil {
		// fall back to defaults
		return defaultRules(), nil
	}
	var file RulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Rules.DangerPatterns) == 0 {
		return defaultRules(), nil
	}
	return file.Rules.DangerPatterns, nil
}

// defaultRules is the built-in table, ordered from critical down to low.
// Evaluation preserves this registration order so trigger output is
// deterministic.
func defaultRules() []Rule {
	return []Rule{
		// critical
		{Name: "recursive-delete+root-path", Pattern: `rm\s+-[a-z]*r[a-z]*f[a-z]*\s+/`, Tier: "critical", Reason: "Recursive deletion targeting a root-level path"},
		{Name: "recursive-delete-everything", Pattern: `rm\s+-[a-z]*r[a-z]*f[a-z]*\s+\*`, Tier: "critical", Reason: "Recursive deletion of everything in place"},
		{Name: "fork-bomb", Pattern: `:\(\)\s*\{\s*:\|:&\s*\}\s*;:`, Tier: "critical", Reason: "Fork bomb"},
		{Name: "raw-disk-write", Pattern: `dd\s+if=`, Tier: "critical", Reason: "Raw disk writing with dd"},
		{Name: "format-filesystem", Pattern: `mkfs\.`, Tier: "critical", Reason: "Formatting a filesystem"},
		{Name: "device-redirect", Pattern: `>\s*/dev/(sd[a-z]|hd[a-z]|nvme)`, Tier: "critical", Reason: "Redirection into a block device"},
		{Name: "system-auth-overwrite", Pattern: `>\s*/etc/(passwd|shadow|sudoers)`, Tier: "critical", Reason: "Overwriting critical authentication files"},
		// high
		{Name: "sudo-recursive-delete", Pattern: `sudo\s+rm\s+-[a-z]*r`, Tier: "high", Reason: "Privileged recursive deletion"},
		{Name: "delete-home", Pattern: `rm\s+-[a-z]*r[a-z]*f[a-z]*\s+(\$home|~)(/|\s|$)`, Tier: "high", Reason: "Deleting the home directory"},
		{Name: "chmod-root-open", Pattern: `chmod\s+-r\s+777\s+/`, Tier: "high", Reason: "World-writable permissions on root"},
		{Name: "pipe-remote-to-sudo", Pattern: `curl[^|]*\|\s*sudo`, Tier: "high", Reason: "Piping a remote script into sudo"},
		{Name: "pipe-to-shell", Pattern: `\|\s*(bash|sh|zsh|fish)(\s|$)`, Tier: "high", Reason: "Piping output into a shell interpreter"},
		{Name: "forced-shutdown", Pattern: `(reboot|shutdown|halt)\s+(-f|--force)`, Tier: "high", Reason: "Forced shutdown or reboot"},
		{Name: "firewall-flush", Pattern: `iptables\s+-f(\s|$)`, Tier: "high", Reason: "Flushing firewall rules"},
		// medium
		{Name: "recursive-delete", Pattern: `rm\s+-[a-z]*r[a-z]*\s+[^/\s]`, Tier: "medium", Reason: "Recursive deletion"},
		{Name: "redirect-system-config", Pattern: `>\s*/etc/`, Tier: "medium", Reason: "Redirection into system configuration"},
		{Name: "download-and-execute", Pattern: `(wget|curl)\s+[^|]*\|\s*(bash|sh)`, Tier: "medium", Reason: "Downloading and executing a remote script"},
		{Name: "find-exec-delete", Pattern: `find\s+.*-exec\s+rm`, Tier: "medium", Reason: "Finding and deleting files"},
		{Name: "move-to-null", Pattern: `mv\s+.*\s+/dev/null`, Tier: "medium", Reason: "Discarding files into the null device"},
		{Name: "wildcard-delete", Pattern: `rm\s+[^|;&]*\*`, Tier: "medium", Reason: "Wildcard in a destructive command"},
		{Name: "chmod-world-writable", Pattern: `chmod\s+777`, Tier: "medium", Reason: "Overly permissive chmod"},
		{Name: "disk-partition-tool", Pattern: `^\s*(fdisk|parted|mount|umount)\s`, Tier: "medium", Reason: "Disk or mount manipulation tool"},
		// low
		{Name: "plain-delete", Pattern: `^\s*rm\s+[^-]`, Tier: "low", Reason: "Deleting files"},
		{Name: "sudo-prefix", Pattern: `^\s*sudo\s`, Tier: "low", Reason: "Running with elevated privileges"},
		{Name: "edit-system-config", Pattern: `(nano|vi|vim)\s+/etc/`, Tier: "low", Reason: "Editing system configuration"},
		{Name: "chmod-executable", Pattern: `chmod\s+\+x`, Tier: "low", Reason: "Making files executable"},
		{Name: "config-file-move", Pattern: `mv\s+.*\.(conf|cfg|ini)(\s|$)`, Tier: "low", Reason: "Moving configuration files"},
	}
}

// safePrefixes lists read-only binaries that short-circuit single-statement
// commands to safe when nothing else matched.
var safePrefixes = map[string]struct{}{
	"ls": {}, "cat": {}, "less": {}, "more": {}, "head": {}, "tail": {},
	"grep": {}, "find": {}, "ps": {}, "top": {}, "df": {}, "du": {},
	"free": {}, "uptime": {}, "whoami": {}, "pwd": {}, "date": {},
	"echo": {}, "printf": {}, "wc": {}, "sort": {}, "uniq": {}, "which": {},
	"man": {}, "history": {}, "env": {}, "uname": {},
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
