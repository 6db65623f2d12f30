package block

import "fmt"

func checkReadablePosition(position, positionCount int) error {
	if position < 0 || position >= positionCount {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidPosition, position, positionCount)
	}
	return nil
}

func checkValidRegion(positionCount, offset, length int) error {
	if offset < 0 || length < 0 || offset > positionCount-length {
		return fmt.Errorf("%w: offset %d, length %d, positionCount %d", ErrInvalidRegion, offset, length, positionCount)
	}
	return nil
}

func checkArrayRange(arrayLength, offset, length int) error {
	if offset < 0 || length < 0 || offset > arrayLength-length {
		return fmt.Errorf("%w: offset %d, length %d, array length %d", ErrInvalidRegion, offset, length, arrayLength)
	}
	return nil
}
