package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/poolhouse/arcticspa/client"
	"github.com/poolhouse/arcticspa/discovery"
	"github.com/poolhouse/arcticspa/internal/config"
	"github.com/poolhouse/arcticspa/internal/logging"
	"github.com/poolhouse/arcticspa/internal/ui"
	"github.com/poolhouse/arcticspa/payload"
	"github.com/poolhouse/arcticspa/protocol"
)

// Discover command flags
var (
	discoverSubnet      string
	discoverTimeout     int
	discoverConcurrency int
	discoverJSON        bool
	discoverSave        string
)

// Status command flags
var (
	statusOnzen bool
	statusJSON  bool
)

// Info command flags
var infoJSON bool

// Settings command flags
var settingsJSON bool

// Set command flags
var setYes bool

func init() {
	discoverCmd.Flags().StringVar(&discoverSubnet, "subnet", "", "Subnet to scan in CIDR form (default: saved preference, then the local /24)")
	discoverCmd.Flags().IntVar(&discoverTimeout, "timeout", 10, "Scan budget in seconds")
	discoverCmd.Flags().IntVar(&discoverConcurrency, "concurrency", 0, "Concurrent probes (0 = scanner default)")
	discoverCmd.Flags().BoolVar(&discoverJSON, "json", false, "Print results as JSON")
	discoverCmd.Flags().StringVar(&discoverSave, "save", "", "Save the discovered controller under this name")
	rootCmd.AddCommand(discoverCmd)
}

func init() {
	statusCmd.Flags().BoolVar(&statusOnzen, "onzen", false, "Also read Onzen water chemistry")
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print status as JSON")
	rootCmd.AddCommand(statusCmd)
}

func init() {
	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "Print information as JSON")
	rootCmd.AddCommand(infoCmd)
}

func init() {
	settingsCmd.Flags().BoolVar(&settingsJSON, "json", false, "Print settings as JSON")
	rootCmd.AddCommand(settingsCmd)
}

func init() {
	setCmd.Flags().BoolVar(&setYes, "yes", false, "Skip confirmation prompts")
	rootCmd.AddCommand(setCmd)
}

func init() {
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configAddCmd)
	configCmd.AddCommand(configRemoveCmd)
	configCmd.AddCommand(configDefaultCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find Arctic Spa controllers on the local network",
	Long: `Scan a subnet for Arctic Spa controllers.

Every host on the subnet is probed with the controller's UDP discovery
query; controllers answer with their pack serial number. The subnet comes
from --subnet, then the saved preference, then the /24 around this
machine's local address.`,
	Example: `  # Scan the local /24
  arcticspa discover

  # Scan a specific subnet with a longer budget
  arcticspa discover --subnet 192.168.1.0/24 --timeout 30

  # Save the (single) discovered controller for later commands
  arcticspa discover --save backyard

  # Machine-readable output
  arcticspa discover --json`,
	Args: cobra.NoArgs,
	RunE: runDiscover,
}

func runDiscover(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	reg, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	subnet := discoverSubnet
	if subnet == "" && reg.Preferences != nil {
		subnet = reg.Preferences.Subnet
	}
	if subnet == "" {
		subnet = localSubnet()
	}
	if subnet == "" {
		return fmt.Errorf("could not determine the local subnet, pass --subnet")
	}

	timeout := discoverTimeout
	if !cmd.Flags().Changed("timeout") && reg.Preferences != nil && reg.Preferences.DiscoverTimeout > 0 {
		timeout = reg.Preferences.DiscoverTimeout
	}

	if !discoverJSON {
		ui.PrintHeader("Discover Controllers", "arcticspa discover", []ui.KV{
			{Key: "Subnet", Value: subnet},
			{Key: "Timeout", Value: fmt.Sprintf("%ds", timeout)},
		})
	}

	scanner := discovery.NewScanner(
		discovery.WithTimeout(time.Duration(timeout)*time.Second),
		discovery.WithConcurrency(discoverConcurrency),
		discovery.WithLogger(logging.GetLogger()),
	)

	hosts, err := scanner.ScanCIDR(cmd.Context(), subnet)
	if err != nil {
		if !discoverJSON {
			ui.PrintFailure("Discovery scan failed", err, []string{
				"The subnet must be an IPv4 CIDR, e.g. 192.168.1.0/24",
				"Scans wider than a /16 are refused",
			})
		}
		return fmt.Errorf("scan failed: %w", err)
	}

	if discoverJSON {
		out := struct {
			Subnet      string   `json:"subnet"`
			Controllers []string `json:"controllers"`
		}{subnet, hosts}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
	} else if len(hosts) == 0 {
		ui.PrintFailure("No controllers found",
			fmt.Errorf("no host on %s answered the discovery query", subnet), []string{
				"Controllers only answer on the subnet they are attached to",
				"Give the scan more time: --timeout 30",
				"Pick the subnet explicitly: --subnet 192.168.1.0/24",
			})
	} else {
		rows := make([]ui.KV, 0, len(hosts))
		for i, host := range hosts {
			rows = append(rows, ui.KV{Key: fmt.Sprintf("Controller %d", i+1), Value: host})
		}
		ui.PrintKeyValues("Discovered Controllers", rows)
	}

	if discoverSave == "" {
		return nil
	}
	if len(hosts) != 1 {
		return fmt.Errorf("--save needs exactly one controller, the scan found %d", len(hosts))
	}

	spa := reg.AddSpa(discoverSave, hosts[0])
	// Best effort: annotate the entry with the pack's identity so
	// FindSpa can match on serial later.
	if info, err := fetchInformation(cmd.Context(), hosts[0]); err == nil {
		spa.Serial = info.PackSerialNumber
		spa.Guid = info.Guid
	}
	if err := reg.Save(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	details := []ui.KV{
		{Key: "Name", Value: discoverSave},
		{Key: "Host", Value: spa.Host},
	}
	if spa.Serial != "" {
		details = append(details, ui.KV{Key: "Serial", Value: spa.Serial})
	}
	if reg.Preferences != nil && reg.Preferences.DefaultSpa == discoverSave {
		details = append(details, ui.KV{Key: "Default", Value: "yes"})
	}
	if !discoverJSON {
		ui.PrintSuccess("Controller saved", details)
	}
	return nil
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show live spa status",
	Long: `Read the controller's live status report: water temperature, setpoint,
pump and blower speeds, and the state of every peripheral.

With --onzen the Onzen water chemistry report (pH, ORP, electrode state)
is read as well. Spas without an Onzen system will not answer it.`,
	Example: `  arcticspa status
  arcticspa status --host 192.168.1.105
  arcticspa status --spa backyard --onzen
  arcticspa status --json`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	c, err := dialController(cmd)
	if err != nil {
		if !statusJSON {
			ui.PrintFailure("Status", err, connectTroubleshooting())
		}
		return err
	}
	defer c.Disconnect()

	types := []protocol.MessageType{protocol.MsgTypeLive}
	if statusOnzen {
		types = append(types, protocol.MsgTypeOnzenLive)
	}

	msgs, err := c.Poll(cmd.Context(), client.DefaultPollTimeout, types...)
	if err != nil {
		if !statusJSON {
			troubleshooting := []string{"The controller may be busy, try again"}
			if statusOnzen {
				troubleshooting = append(troubleshooting,
					"Spas without an Onzen system never answer --onzen, drop the flag")
			}
			ui.PrintFailure("Status", err, troubleshooting)
		}
		return fmt.Errorf("failed to read status: %w", err)
	}

	live, _ := msgs[protocol.MsgTypeLive].Body.(*payload.Live)
	if live == nil {
		return fmt.Errorf("controller answered with an unparseable live report")
	}
	var onzen *payload.OnzenLive
	if m, ok := msgs[protocol.MsgTypeOnzenLive]; ok {
		onzen, _ = m.Body.(*payload.OnzenLive)
	}

	if statusJSON {
		out := struct {
			Live  *payload.Live      `json:"live"`
			Onzen *payload.OnzenLive `json:"onzen,omitempty"`
		}{live, onzen}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	ui.PrintHeader("Spa Status", "arcticspa status", []ui.KV{
		{Key: "Controller", Value: c.Host()},
	})
	ui.PrintKeyValues("Water", waterRows(live))
	ui.PrintKeyValues("Equipment", equipmentRows(live))
	if onzen != nil {
		ui.PrintKeyValues("Water Chemistry", onzenRows(onzen))
	}
	return nil
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show pack and controller information",
	Long: `Read the controller's static information report: serial numbers,
firmware and hardware versions, product identifiers, and network identity.`,
	Example: `  arcticspa info
  arcticspa info --spa backyard
  arcticspa info --json`,
	Args: cobra.NoArgs,
	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	c, err := dialController(cmd)
	if err != nil {
		if !infoJSON {
			ui.PrintFailure("Information", err, connectTroubleshooting())
		}
		return err
	}
	defer c.Disconnect()

	msg, err := c.FetchOne(cmd.Context(), protocol.MsgTypeInformation, client.DefaultPollTimeout)
	if err != nil {
		if !infoJSON {
			ui.PrintFailure("Information", err, []string{"The controller may be busy, try again"})
		}
		return fmt.Errorf("failed to read information: %w", err)
	}
	info, _ := msg.Body.(*payload.Information)
	if info == nil {
		return fmt.Errorf("controller answered with an unparseable information report")
	}

	if infoJSON {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	ui.PrintHeader("Pack Information", "arcticspa info", []ui.KV{
		{Key: "Controller", Value: c.Host()},
	})
	ui.PrintKeyValues("", infoRows(info))
	return nil
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show controller settings",
	Long: `Read the controller's settings report: filtration schedule, Onzen and
ozone duty cycles, temperature limits, and the legal range for each value.`,
	Example: `  arcticspa settings
  arcticspa settings --spa backyard --json`,
	Args: cobra.NoArgs,
	RunE: runSettings,
}

func runSettings(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	c, err := dialController(cmd)
	if err != nil {
		if !settingsJSON {
			ui.PrintFailure("Settings", err, connectTroubleshooting())
		}
		return err
	}
	defer c.Disconnect()

	msg, err := c.FetchOne(cmd.Context(), protocol.MsgTypeSettings, client.DefaultPollTimeout)
	if err != nil {
		if !settingsJSON {
			ui.PrintFailure("Settings", err, []string{"The controller may be busy, try again"})
		}
		return fmt.Errorf("failed to read settings: %w", err)
	}
	settings, _ := msg.Body.(*payload.Settings)
	if settings == nil {
		return fmt.Errorf("controller answered with an unparseable settings report")
	}

	if settingsJSON {
		data, err := json.MarshalIndent(settings, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	ui.PrintHeader("Controller Settings", "arcticspa settings", []ui.KV{
		{Key: "Controller", Value: c.Host()},
	})
	ui.PrintKeyValues("", settingsRows(settings))
	return nil
}

var setCmd = &cobra.Command{
	Use:   "set <property> <value>",
	Short: "Change a spa property",
	Long: `Send an equipment command to the controller.

Properties and their values:

  temperature     59-104 (°F)
  pump1..pump5    off, low, high
  blower1,blower2 off, low, high
  lights          on, off
  stereo          on, off
  filter          on, off
  onzen           on, off
  ozone           on, off
  exhaust-fan     on, off
  sauna-state     idle, timer, preset-a, preset-b, preset-c
  sauna-time-left minutes
  all-on          on, off
  fogger          on, off
  spaboy-boost    on, off
  sds             on, off
  yess            on, off
  pack-reset      on (reboots the pack; prompts unless --yes)
  log-dump        on (prompts unless --yes)

The controller does not acknowledge commands; it reflects them in the next
live report. Check with 'arcticspa status' or 'arcticspa watch'.`,
	Example: `  arcticspa set temperature 102
  arcticspa set pump1 high
  arcticspa set lights on --spa backyard
  arcticspa set sauna-state preset-a
  arcticspa set pack-reset on --yes`,
	Args: cobra.ExactArgs(2),
	RunE: runSet,
}

func runSet(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	name := strings.ToLower(args[0])
	prop, ok := setProperties[name]
	if !ok {
		return fmt.Errorf("unknown property %q, valid properties: %s",
			args[0], strings.Join(propertyNames(), ", "))
	}

	value, err := prop.parse(args[1])
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", name, err)
	}

	if prop.confirm && !setYes {
		if !confirmProperty(prop.cmd) {
			return nil // user cancelled
		}
	}

	c, err := dialController(cmd)
	if err != nil {
		ui.PrintFailure("Set "+name, err, connectTroubleshooting())
		return err
	}
	defer c.Disconnect()

	if err := c.Command(cmd.Context(), prop.cmd, value); err != nil {
		ui.PrintFailure("Set "+name, err, []string{
			"The session may have dropped, try again",
			"Verify the value is in range with 'arcticspa settings'",
		})
		return fmt.Errorf("command failed: %w", err)
	}

	ui.PrintSuccess("Command sent", []ui.KV{
		{Key: "Controller", Value: c.Host()},
		{Key: "Property", Value: name},
		{Key: "Value", Value: args[1]},
	})
	return nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage saved spa controllers",
	Long: `Manage the registry of saved spa controllers.

Saved spas give controllers a stable name: commands address them with
--spa <name>, and the default spa is used when no --host or --spa is
given. The registry lives in a YAML file under the user config directory
('arcticspa config path' prints the location).`,
	Example: `  arcticspa config add backyard 192.168.1.105
  arcticspa config list
  arcticspa config default backyard
  arcticspa config remove backyard`,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved spas",
	Args:  cobra.NoArgs,
	RunE:  runConfigList,
}

func runConfigList(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	reg, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if len(reg.Spas) == 0 {
		fmt.Println("No spas saved.")
		fmt.Println("Add one with 'arcticspa config add <name> <host>' or 'arcticspa discover --save <name>'.")
		return nil
	}

	names := make([]string, 0, len(reg.Spas))
	for name := range reg.Spas {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]ui.KV, 0, len(names))
	for _, name := range names {
		spa := reg.Spas[name]
		value := spa.Host
		if spa.Port != 0 {
			value = net.JoinHostPort(spa.Host, strconv.Itoa(spa.Port))
		}
		if spa.Serial != "" {
			value += fmt.Sprintf("  (serial %s)", spa.Serial)
		}
		if reg.Preferences != nil && reg.Preferences.DefaultSpa == name {
			value += "  [default]"
		}
		rows = append(rows, ui.KV{Key: name, Value: value})
	}
	ui.PrintKeyValues("Saved Spas", rows)
	return nil
}

var configAddCmd = &cobra.Command{
	Use:   "add <name> <host>",
	Short: "Save a spa controller under a name",
	Example: `  arcticspa config add backyard 192.168.1.105
  arcticspa config add cabin 10.0.7.2`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigAdd,
}

func runConfigAdd(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	reg, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	spa := reg.AddSpa(args[0], args[1])
	if err := reg.Save(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	details := []ui.KV{
		{Key: "Name", Value: args[0]},
		{Key: "Host", Value: spa.Host},
	}
	if reg.Preferences != nil && reg.Preferences.DefaultSpa == args[0] {
		details = append(details, ui.KV{Key: "Default", Value: "yes"})
	}
	ui.PrintSuccess("Spa saved", details)
	return nil
}

var configRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a saved spa",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigRemove,
}

func runConfigRemove(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	reg, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if !reg.RemoveSpa(args[0]) {
		return fmt.Errorf("no spa named %q in the registry", args[0])
	}
	if err := reg.Save(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Printf("Removed %q from the registry.\n", args[0])
	return nil
}

var configDefaultCmd = &cobra.Command{
	Use:   "default <name>",
	Short: "Make a saved spa the default",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigDefault,
}

func runConfigDefault(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	reg, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := reg.SetDefault(args[0]); err != nil {
		return err
	}
	if err := reg.Save(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Printf("%q is now the default spa.\n", args[0])
	return nil
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

// setProperty maps one settable property name to the command it sends and
// the parser for its value argument.
type setProperty struct {
	cmd     client.CommandType
	parse   func(string) (any, error)
	confirm bool
}

var setProperties = map[string]setProperty{
	"temperature":     {cmd: client.CmdTemperatureSetpoint, parse: parseIntValue},
	"pump1":           {cmd: client.CmdPump1, parse: parsePumpState},
	"pump2":           {cmd: client.CmdPump2, parse: parsePumpState},
	"pump3":           {cmd: client.CmdPump3, parse: parsePumpState},
	"pump4":           {cmd: client.CmdPump4, parse: parsePumpState},
	"pump5":           {cmd: client.CmdPump5, parse: parsePumpState},
	"blower1":         {cmd: client.CmdBlower1, parse: parsePumpState},
	"blower2":         {cmd: client.CmdBlower2, parse: parsePumpState},
	"lights":          {cmd: client.CmdLights, parse: parseBoolValue},
	"stereo":          {cmd: client.CmdStereo, parse: parseBoolValue},
	"filter":          {cmd: client.CmdFilter, parse: parseBoolValue},
	"onzen":           {cmd: client.CmdOnzen, parse: parseBoolValue},
	"ozone":           {cmd: client.CmdOzone, parse: parseBoolValue},
	"exhaust-fan":     {cmd: client.CmdExhaustFan, parse: parseBoolValue},
	"sauna-state":     {cmd: client.CmdSaunaState, parse: parseSaunaState},
	"sauna-time-left": {cmd: client.CmdSaunaTimeLeft, parse: parseIntValue},
	"all-on":          {cmd: client.CmdAllOn, parse: parseBoolValue},
	"fogger":          {cmd: client.CmdFogger, parse: parseBoolValue},
	"spaboy-boost":    {cmd: client.CmdSpaboyBoost, parse: parseBoolValue},
	"sds":             {cmd: client.CmdSDS, parse: parseBoolValue},
	"yess":            {cmd: client.CmdYess, parse: parseBoolValue},
	"pack-reset":      {cmd: client.CmdPackReset, parse: parseBoolValue, confirm: true},
	"log-dump":        {cmd: client.CmdLogDump, parse: parseBoolValue, confirm: true},
}

func propertyNames() []string {
	names := make([]string, 0, len(setProperties))
	for name := range setProperties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func parseBoolValue(s string) (any, error) {
	switch strings.ToLower(s) {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	}
	return nil, fmt.Errorf("want on or off, got %q", s)
}

func parsePumpState(s string) (any, error) {
	switch strings.ToLower(s) {
	case "off", "0":
		return payload.PumpOff, nil
	case "low", "1":
		return payload.PumpLow, nil
	case "high", "2":
		return payload.PumpHigh, nil
	}
	return nil, fmt.Errorf("want off, low, or high, got %q", s)
}

func parseSaunaState(s string) (any, error) {
	switch strings.ToLower(s) {
	case "idle":
		return payload.SaunaIdle, nil
	case "timer":
		return payload.SaunaTimer, nil
	case "preset-a":
		return payload.SaunaPresetA, nil
	case "preset-b":
		return payload.SaunaPresetB, nil
	case "preset-c":
		return payload.SaunaPresetC, nil
	}
	return nil, fmt.Errorf("want idle, timer, preset-a, preset-b, or preset-c, got %q", s)
}

func parseIntValue(s string) (any, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("want a number, got %q", s)
	}
	return v, nil
}

// confirmProperty runs the confirmation prompt for commands that disrupt
// the spa. Returns false when the user declines.
func confirmProperty(cmd client.CommandType) bool {
	switch cmd {
	case client.CmdPackReset:
		return ui.PackResetConfirmation()
	case client.CmdLogDump:
		return ui.ConfirmDangerousOperation(
			"LOG DUMP",
			[]string{
				"This asks the pack to dump its internal logs",
				"The pack may pause other processing while the dump runs",
			},
			"")
	}
	return true
}

// dialController resolves the target controller and opens a session to it.
// The caller must Disconnect.
func dialController(cmd *cobra.Command) (*client.Client, error) {
	host, port, err := resolveController(cmd)
	if err != nil {
		return nil, err
	}

	c := client.New(host,
		client.WithPort(port),
		client.WithLogger(logging.GetLogger()),
	)
	if err := c.Connect(cmd.Context()); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", host, err)
	}
	return c, nil
}

// resolveController determines which controller to talk to, in order of
// preference: --host, --spa from the registry, the registry default, and
// finally a discovery scan that found exactly one controller.
func resolveController(cmd *cobra.Command) (string, int, error) {
	if hostFlag != "" {
		return hostFlag, portFlag, nil
	}

	reg, err := config.LoadRegistry()
	if err != nil {
		return "", 0, fmt.Errorf("failed to load configuration: %w", err)
	}

	if spaFlag != "" {
		spa := reg.FindSpa(spaFlag)
		if spa == nil {
			return "", 0, fmt.Errorf("no spa named %q in the registry (see 'arcticspa config list')", spaFlag)
		}
		return spa.Host, spaPort(cmd, spa), nil
	}

	if spa := reg.DefaultSpa(); spa != nil {
		return spa.Host, spaPort(cmd, spa), nil
	}

	// Try discovery
	fmt.Println("No controller configured, scanning the local network...")
	hosts, err := scanLocalSubnet(cmd.Context(), reg)
	if err != nil {
		return "", 0, fmt.Errorf("discovery failed: %w", err)
	}

	if len(hosts) == 0 {
		return "", 0, fmt.Errorf("no controllers found. Use --host or run 'arcticspa discover'")
	}

	if len(hosts) > 1 {
		fmt.Printf("Found %d controllers:\n", len(hosts))
		for i, host := range hosts {
			fmt.Printf("%d. %s\n", i+1, host)
		}
		return "", 0, fmt.Errorf("multiple controllers found. Use --host or --spa to pick one")
	}

	// Exactly one controller found
	fmt.Printf("Found controller: %s\n\n", hosts[0])
	return hosts[0], portFlag, nil
}

// spaPort prefers an explicit --port over the saved entry's port.
func spaPort(cmd *cobra.Command, spa *config.Spa) int {
	if cmd.Flags().Changed("port") || spa.Port == 0 {
		return portFlag
	}
	return spa.Port
}

// scanLocalSubnet runs a discovery scan over the preferred or local subnet.
func scanLocalSubnet(ctx context.Context, reg *config.Registry) ([]string, error) {
	subnet := ""
	timeout := 10
	if reg.Preferences != nil {
		subnet = reg.Preferences.Subnet
		if reg.Preferences.DiscoverTimeout > 0 {
			timeout = reg.Preferences.DiscoverTimeout
		}
	}
	if subnet == "" {
		subnet = localSubnet()
	}
	if subnet == "" {
		return nil, fmt.Errorf("could not determine the local subnet")
	}

	scanner := discovery.NewScanner(
		discovery.WithTimeout(time.Duration(timeout)*time.Second),
		discovery.WithLogger(logging.GetLogger()),
	)
	return scanner.ScanCIDR(ctx, subnet)
}

// localSubnet guesses the /24 around this machine's outbound address.
func localSubnet() string {
	ip := net.ParseIP(discovery.LocalIP())
	if ip == nil {
		return ""
	}
	v4 := ip.To4()
	if v4 == nil {
		return ""
	}
	return fmt.Sprintf("%s/24", v4.Mask(net.CIDRMask(24, 32)))
}

// fetchInformation opens a short session just to read the Information report.
func fetchInformation(ctx context.Context, host string) (*payload.Information, error) {
	c := client.New(host,
		client.WithPort(portFlag),
		client.WithLogger(logging.GetLogger()),
	)
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}
	defer c.Disconnect()

	msg, err := c.FetchOne(ctx, protocol.MsgTypeInformation, client.DefaultPollTimeout)
	if err != nil {
		return nil, err
	}
	info, ok := msg.Body.(*payload.Information)
	if !ok {
		return nil, fmt.Errorf("unparseable information report")
	}
	return info, nil
}

func connectTroubleshooting() []string {
	return []string{
		"Check the controller is reachable: arcticspa discover",
		"Controllers accept one client at a time, close other apps first",
		"Pass the address explicitly: --host <ip>",
	}
}

func waterRows(live *payload.Live) []ui.KV {
	return []ui.KV{
		{Key: "Temperature", Value: fmt.Sprintf("%d°F", live.TemperatureFahrenheit)},
		{Key: "Setpoint", Value: fmt.Sprintf("%d°F", live.TemperatureSetpointFahrenheit)},
		{Key: "Heater 1", Value: ui.FormatOnOff(live.Heater1 != 0)},
		{Key: "Heater 2", Value: ui.FormatOnOff(live.Heater2 != 0)},
		{Key: "Economy", Value: ui.FormatOnOff(live.Economy)},
	}
}

func equipmentRows(live *payload.Live) []ui.KV {
	return []ui.KV{
		{Key: "Pump 1", Value: live.Pump1.String()},
		{Key: "Pump 2", Value: live.Pump2.String()},
		{Key: "Pump 3", Value: live.Pump3.String()},
		{Key: "Pump 4", Value: live.Pump4.String()},
		{Key: "Pump 5", Value: live.Pump5.String()},
		{Key: "Blower 1", Value: live.Blower1.String()},
		{Key: "Blower 2", Value: live.Blower2.String()},
		{Key: "Lights", Value: ui.FormatOnOff(live.Lights)},
		{Key: "Stereo", Value: ui.FormatOnOff(live.Stereo)},
		{Key: "Filter", Value: ui.FormatOnOff(live.Filter != 0)},
		{Key: "Onzen", Value: ui.FormatOnOff(live.Onzen)},
		{Key: "Ozone", Value: ui.FormatOnOff(live.Ozone != 0)},
		{Key: "Exhaust Fan", Value: ui.FormatOnOff(live.ExhaustFan)},
		{Key: "Sauna", Value: live.Sauna.String()},
		{Key: "Fogger", Value: ui.FormatOnOff(live.Fogger)},
	}
}

func onzenRows(o *payload.OnzenLive) []ui.KV {
	return []ui.KV{
		{Key: "pH", Value: fmt.Sprintf("%.2f", float64(o.PH100)/100)},
		{Key: "ORP", Value: fmt.Sprintf("%d mV", o.ORP)},
		{Key: "Electrode Current", Value: fmt.Sprintf("%d", o.Current)},
		{Key: "Electrode Voltage", Value: fmt.Sprintf("%d", o.Voltage)},
		{Key: "Electrode Wear", Value: fmt.Sprintf("%d", o.ElectrodeWear)},
	}
}

func infoRows(info *payload.Information) []ui.KV {
	var rows []ui.KV
	add := func(key, value string) {
		if value != "" {
			rows = append(rows, ui.KV{Key: key, Value: value})
		}
	}
	add("Serial Number", info.PackSerialNumber)
	add("Pack Firmware", info.PackFirmwareVersion)
	add("Pack Hardware", info.PackHardwareVersion)
	add("Pack Product", info.PackProductID)
	add("Pack Board", info.PackBoardID)
	add("Topside Product", info.TopsideProductID)
	add("Topside Software", info.TopsideSoftwareVersion)
	add("Spa Type", fmt.Sprintf("%d", info.SpaType))
	add("GUID", info.Guid)
	add("MAC Address", info.MacAddress)
	add("Firmware", info.FirmwareVersion)
	add("Product Code", info.ProductCode)
	add("Spaboy Firmware", info.SpaboyFirmwareVersion)
	add("Spaboy Hardware", info.SpaboyHardwareVersion)
	add("Spaboy Serial", info.SpaboySerialNumber)
	add("RFID Firmware", info.RfidFirmwareVersion)
	add("RFID Serial", info.RfidSerialNumber)
	return rows
}

func settingsRows(s *payload.Settings) []ui.KV {
	return []ui.KV{
		{Key: "Filtration Frequency", Value: fmt.Sprintf("%d cycles/day (%d-%d)",
			s.FiltrationFrequency, s.MinFiltrationFrequency, s.MaxFiltrationFrequency)},
		{Key: "Filtration Duration", Value: fmt.Sprintf("%d h (%d-%d)",
			s.FiltrationDuration, s.MinFiltrationDuration, s.MaxFiltrationDuration)},
		{Key: "Filtration Offset", Value: fmt.Sprintf("%d", s.FiltrationOffset)},
		{Key: "Filter Suspension", Value: ui.FormatOnOff(s.FilterSuspension)},
		{Key: "Onzen Hours", Value: fmt.Sprintf("%d h/day (%d-%d)",
			s.OnzenHours, s.MinOnzenHours, s.MaxOnzenHours)},
		{Key: "Onzen Cycles", Value: fmt.Sprintf("%d (%d-%d)",
			s.OnzenCycles, s.MinOnzenCycles, s.MaxOnzenCycles)},
		{Key: "Ozone Hours", Value: fmt.Sprintf("%d h/day (%d-%d)",
			s.OzoneHours, s.MinOzoneHours, s.MaxOzoneHours)},
		{Key: "Ozone Cycles", Value: fmt.Sprintf("%d (%d-%d)",
			s.OzoneCycles, s.MinOzoneCycles, s.MaxOzoneCycles)},
		{Key: "Temperature Range", Value: fmt.Sprintf("%d-%d°F", s.MinTemperature, s.MaxTemperature)},
		{Key: "Temperature Offset", Value: fmt.Sprintf("%d°F", s.TemperatureOffset)},
		{Key: "Sauna Duration", Value: fmt.Sprintf("%d min", s.SaunaDuration)},
		{Key: "Spaboy Hours", Value: fmt.Sprintf("%d", s.SpaboyHours)},
		{Key: "Flash Lights On Error", Value: ui.FormatOnOff(s.FlashLightsOnError)},
	}
}
