package ntfs

import (
	"github.com/dsoprea/go-logging"
)

// loggedUtilityStreamNameTxfData is the stream name under which
// Transactional NTFS stores its $TXF_DATA structure inside a
// $LOGGED_UTILITY_STREAM attribute.
const loggedUtilityStreamNameTxfData = "$TXF_DATA"

// LoggedUtilityStreamValue is the decoded $LOGGED_UTILITY_STREAM attribute.
// Only the "$TXF_DATA" named stream is given a typed decode (TxfData);
// any other named stream is carried as opaque RawData.
type LoggedUtilityStreamValue struct {
	Name    string
	TxfData *TxfDataValues
	RawData []byte
}

// ReadLoggedUtilityStreamValue decodes a $LOGGED_UTILITY_STREAM attribute,
// routing to the $TXF_DATA decoder when the attribute's name identifies it
// as carrying that structure.
func ReadLoggedUtilityStreamValue(attr *MftAttribute) (lusv *LoggedUtilityStreamValue, err error) {
	defer func() {
		if errRaw := recover(); errRaw != nil {
			var ok bool
			if err, ok = errRaw.(error); ok == true {
				err = log.Wrap(err)
			} else {
				err = log.Errorf("Error not an error: [%v]", errRaw)
			}
		}
	}()

	if attr.Type != AttributeTypeLoggedUtilityStream {
		log.Panicf("attribute is not $LOGGED_UTILITY_STREAM: %s", attr.Type.Name())
	}

	if attr.NonResident == true {
		log.Panicf("$LOGGED_UTILITY_STREAM must be resident")
	}

	lusv = &LoggedUtilityStreamValue{
		Name:    attr.Name,
		RawData: attr.ResidentData,
	}

	if equalNameAscii(attr.Name, loggedUtilityStreamNameTxfData) == true {
		tdv, decodeErr := readTxfDataValues(attr.ResidentData)
		log.PanicIf(decodeErr)

		lusv.TxfData = tdv
	}

	return lusv, nil
}
