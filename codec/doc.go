/*
Package codec writes and reads the protobuf wire format used for all
messages and models persisted by the application.

The types are small enough that the encoding is done by hand on top of
the gogo/protobuf buffer helpers instead of generated code. Fields are
encoded in order, zero values are omitted and unknown fields are skipped
on read, so the output is compatible with a protoc generated decoder.
*/
package codec
