package ttlv

// Cmd enumerates the base protocol commands the session and the decoder
// must recognize by name.
type Cmd uint16

const (
	CmdUdpBroadcast       Cmd = 0x7030
	CmdUdpBroadcastResp   Cmd = 0x7031
	CmdTcpHeartBeat       Cmd = 0x7037
	CmdTcpHeartBeatResp   Cmd = 0x7038
	CmdRandom             Cmd = 0x7032
	CmdRandomResp         Cmd = 0x7033
	CmdLogin              Cmd = 0x7034
	CmdLoginResp          Cmd = 0x7035
	CmdBLEAccountAuth     Cmd = 0x7016
	CmdBLEAccountAuthResp Cmd = 0x7017
	CmdTlsRead            Cmd = 0x0011
	CmdTlsReadRes         Cmd = 0x0012
	CmdTlsWrite           Cmd = 0x0013
	CmdTlsDeviceReport    Cmd = 0x0014
	CmdTlsWriteRes        Cmd = 0x7036
	CmdWifiPair           Cmd = 0x7010
	CmdWifiPairResp       Cmd = 0x7011
	CmdWifiScan           Cmd = 0x7012
	CmdWifiScanResp       Cmd = 0x7013
	CmdTransparentSend    Cmd = 0x0023
	CmdTransparentRecv    Cmd = 0x0024
)

var cmdNames = map[Cmd]string{
	CmdUdpBroadcast:       "UdpBroadcast",
	CmdUdpBroadcastResp:   "UdpBroadcastResp",
	CmdTcpHeartBeat:       "TcpHeartBeat",
	CmdTcpHeartBeatResp:   "TcpHeartBeatResp",
	CmdRandom:             "Random",
	CmdRandomResp:         "RandomResp",
	CmdLogin:              "Login",
	CmdLoginResp:          "LoginResp",
	CmdBLEAccountAuth:     "BLEAccountAuth",
	CmdBLEAccountAuthResp: "BLEAccountAuthResp",
	CmdTlsRead:            "TlsRead",
	CmdTlsReadRes:         "TlsReadRes",
	CmdTlsWrite:           "TlsWrite",
	CmdTlsDeviceReport:    "TlsDeviceReport",
	CmdTlsWriteRes:        "TlsWriteRes",
	CmdWifiPair:           "WifiPair",
	CmdWifiPairResp:       "WifiPairResp",
	CmdWifiScan:           "WifiScan",
	CmdWifiScanResp:       "WifiScanResp",
	CmdTransparentSend:    "TransparentSend",
	CmdTransparentRecv:    "TransparentRecv",
}

// IotCmd enumerates the extended, higher-level IoT command table. Frames
// carrying these codes are ordinary TTLV command frames; the decoder does
// not special-case them the way it special-cases CmdTransparentRecv.
type IotCmd uint16

const (
	IotReadDeviceStatus            IotCmd = 0x0031
	IotReadDeviceStatusAck         IotCmd = 0x0032
	IotReadDeviceWifiList          IotCmd = 0x7051
	IotReadDeviceWifiListAck       IotCmd = 0x7052
	IotReadDeviceWifiListReport    IotCmd = 0x7053
	IotReadDeviceWifiListReportAck IotCmd = 0x7054
	IotReadDeviceSwitchWifi        IotCmd = 0x7055
	IotReadDeviceSwitchWifiAck     IotCmd = 0x7056
	IotReadDeviceInfo              IotCmd = 0x7040
	IotReadDeviceInfoAck           IotCmd = 0x7041
	IotFileControl                 IotCmd = 0x7043
	IotFileControlAck              IotCmd = 0x7044
	IotDeviceDataReport             IotCmd = 0x7065
	IotDeviceDataReportAck          IotCmd = 0x7066
	IotSendDeviceTransparent        IotCmd = 0x0023
	IotReceiveDeviceTransparent     IotCmd = 0x0024
	IotDeviceTimeSyncReport         IotCmd = 0x7060
	IotDeviceTimeSyncReportAck      IotCmd = 0x7061
	IotSendDeviceTimeSyncEvent      IotCmd = 0x7062
	IotDeviceUnbindReport           IotCmd = 0x7063
	IotDeviceUnbindReportAck        IotCmd = 0x7064
	IotSendDeviceAccountAuth        IotCmd = 0x7017
	IotSendDeviceAccountAuthAck     IotCmd = 0x7018
)

var iotCmdNames = map[IotCmd]string{
	IotReadDeviceStatus:            "ReadDeviceStatus",
	IotReadDeviceStatusAck:         "ReadDeviceStatusAck",
	IotReadDeviceWifiList:          "ReadDeviceWifiList",
	IotReadDeviceWifiListAck:       "ReadDeviceWifiListAck",
	IotReadDeviceWifiListReport:    "ReadDeviceWifiListReport",
	IotReadDeviceWifiListReportAck: "ReadDeviceWifiListReportAck",
	IotReadDeviceSwitchWifi:        "ReadDeviceSwitchWifi",
	IotReadDeviceSwitchWifiAck:     "ReadDeviceSwitchWifiAck",
	IotReadDeviceInfo:              "ReadDeviceInfo",
	IotReadDeviceInfoAck:           "ReadDeviceInfoAck",
	IotFileControl:                 "FileControl",
	IotFileControlAck:              "FileControlAck",
	IotDeviceDataReport:            "DeviceDataReport",
	IotDeviceDataReportAck:         "DeviceDataReportAck",
	IotSendDeviceTransparent:       "SendDeviceTransparent",
	IotReceiveDeviceTransparent:    "ReceiveDeviceTransparent",
	IotDeviceTimeSyncReport:        "DeviceTimeSyncReport",
	IotDeviceTimeSyncReportAck:     "DeviceTimeSyncReportAck",
	IotSendDeviceTimeSyncEvent:     "SendDeviceTimeSyncEvent",
	IotDeviceUnbindReport:          "DeviceUnbindReport",
	IotDeviceUnbindReportAck:       "DeviceUnbindReportAck",
	IotSendDeviceAccountAuth:       "SendDeviceAccountAuth",
	IotSendDeviceAccountAuthAck:    "SendDeviceAccountAuthAck",
}

// CommandName resolves a wire code to a human-readable name, trying the
// base command table before the extended IoT table so that codes shared
// between the two tables (e.g. 0x7017) resolve to the base command's name.
func CommandName(code uint16) (string, bool) {
	if name, ok := cmdNames[Cmd(code)]; ok {
		return name, true
	}
	if name, ok := iotCmdNames[IotCmd(code)]; ok {
		return name, true
	}
	return "", false
}

// IsKnownCommand reports whether code appears in either command table.
func IsKnownCommand(code uint16) bool {
	_, ok := CommandName(code)
	return ok
}
