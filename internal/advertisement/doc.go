// Package advertisement decodes BLE manufacturer-data advertisements from
// QUEC devices (manufacturer id 0x5551) into a DeviceDescriptor, without
// touching a scanner or an adapter.
package advertisement
